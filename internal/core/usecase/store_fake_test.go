package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/verticalview/client-portal/internal/core/domain"
)

type storeCall struct {
	op     string
	table  string
	id     string
	filter string
	fields domain.Fields
}

// recordStoreFake serves list results per table and keeps records by id for
// get/update. Every call is recorded in order.
type recordStoreFake struct {
	mu      sync.Mutex
	lists   map[string][]domain.Record
	records map[string]domain.Record
	calls   []storeCall
	nextID  int
	failOn  map[string]error
}

func newRecordStoreFake() *recordStoreFake {
	return &recordStoreFake{
		lists:   map[string][]domain.Record{},
		records: map[string]domain.Record{},
		failOn:  map[string]error{},
	}
}

func (f *recordStoreFake) put(rec domain.Record) {
	f.records[rec.ID] = rec
}

func (f *recordStoreFake) callsOf(op string) []storeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storeCall
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *recordStoreFake) record(c storeCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.failOn[c.op]
}

func (f *recordStoreFake) List(_ context.Context, table string, opts domain.ListOptions) ([]domain.Record, error) {
	if err := f.record(storeCall{op: "list", table: table, filter: opts.Filter}); err != nil {
		return nil, err
	}
	return append([]domain.Record(nil), f.lists[table]...), nil
}

func (f *recordStoreFake) Get(_ context.Context, table, id string) (*domain.Record, error) {
	if err := f.record(storeCall{op: "get", table: table, id: id}); err != nil {
		return nil, err
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, domain.NewError(domain.ErrNotFound, "get", "record "+id+" not found")
	}
	return &rec, nil
}

func (f *recordStoreFake) Create(_ context.Context, table string, fields domain.Fields) (*domain.Record, error) {
	if err := f.record(storeCall{op: "create", table: table, fields: fields}); err != nil {
		return nil, err
	}
	f.nextID++
	rec := domain.Record{ID: fmt.Sprintf("recNew%d", f.nextID), Fields: fields}
	f.records[rec.ID] = rec
	return &rec, nil
}

func (f *recordStoreFake) Update(_ context.Context, table, id string, fields domain.Fields) (*domain.Record, error) {
	if err := f.record(storeCall{op: "update", table: table, id: id, fields: fields}); err != nil {
		return nil, err
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, domain.NewError(domain.ErrNotFound, "update", "record "+id+" not found")
	}
	merged := domain.Fields{}
	for k, v := range rec.Fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	rec.Fields = merged
	f.records[id] = rec
	return &rec, nil
}

func (f *recordStoreFake) Delete(_ context.Context, table, id string) error {
	if err := f.record(storeCall{op: "delete", table: table, id: id}); err != nil {
		return err
	}
	delete(f.records, id)
	return nil
}

type notifierFake struct {
	events []domain.ReviewEvent
	err    error
}

func (n *notifierFake) PublishReviewEvent(_ context.Context, event domain.ReviewEvent) error {
	n.events = append(n.events, event)
	return n.err
}

type observerFake struct {
	loads       []string
	unknown     int
	transitions []string
}

func (o *observerFake) ObserveDashboardLoad(outcome string) { o.loads = append(o.loads, outcome) }

func (o *observerFake) ObserveUnknownStatus() { o.unknown++ }

func (o *observerFake) ObserveReviewTransition(action domain.ReviewAction, outcome string) {
	o.transitions = append(o.transitions, string(action)+":"+outcome)
}

var testTables = domain.Tables{
	Clients:   "Clients",
	Contracts: "Contrats",
	Videos:    "Vidéos",
	Team:      "Équipe",
	Feedbacks: "Feedbacks",
}
