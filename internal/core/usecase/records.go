package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/verticalview/client-portal/internal/core/domain"
	"github.com/verticalview/client-portal/internal/core/fieldmap"
	"github.com/verticalview/client-portal/internal/core/ports"
	"github.com/verticalview/client-portal/internal/core/relation"
)

// RecordsUseCase exposes the store's generic records with argument checks
// and the raw client bundle. No field mapping is applied.
type RecordsUseCase struct {
	store  ports.RecordStore
	tables domain.Tables
	policy relation.Policy
}

func NewRecordsUseCase(store ports.RecordStore, tables domain.Tables, policy relation.Policy) *RecordsUseCase {
	return &RecordsUseCase{
		store:  store,
		tables: tables,
		policy: policy,
	}
}

func (uc *RecordsUseCase) List(ctx context.Context, table string, opts domain.ListOptions) ([]domain.Record, error) {
	if err := requireArgs("list records", "table", table); err != nil {
		return nil, err
	}
	for _, s := range opts.Sort {
		if strings.TrimSpace(s.Field) == "" {
			return nil, domain.NewError(domain.ErrInvalidInput, "list records", "sort field is required")
		}
		if s.Direction != "" && s.Direction != domain.SortAsc && s.Direction != domain.SortDesc {
			return nil, domain.NewError(domain.ErrInvalidInput, "list records", fmt.Sprintf("unknown sort direction %q", s.Direction))
		}
	}
	return uc.store.List(ctx, table, opts)
}

func (uc *RecordsUseCase) Get(ctx context.Context, table, id string) (*domain.Record, error) {
	if err := requireArgs("get record", "table", table, "record id", id); err != nil {
		return nil, err
	}
	return uc.store.Get(ctx, table, id)
}

func (uc *RecordsUseCase) Create(ctx context.Context, table string, fields domain.Fields) (*domain.Record, error) {
	if err := requireArgs("create record", "table", table); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "create record", "fields are required")
	}
	return uc.store.Create(ctx, table, fields)
}

func (uc *RecordsUseCase) Update(ctx context.Context, table, id string, fields domain.Fields) (*domain.Record, error) {
	if err := requireArgs("update record", "table", table, "record id", id); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "update record", "fields are required")
	}
	return uc.store.Update(ctx, table, id, fields)
}

func (uc *RecordsUseCase) Delete(ctx context.Context, table, id string) error {
	if err := requireArgs("delete record", "table", table, "record id", id); err != nil {
		return err
	}
	return uc.store.Delete(ctx, table, id)
}

// ClientBundle finds a client by record id or by contact email and returns
// its raw videos, contracts and team. An unknown client yields a nil Client
// and empty lists.
func (uc *RecordsUseCase) ClientBundle(ctx context.Context, ref string, byEmail bool) (*domain.RecordBundle, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "client bundle", "client reference is required")
	}

	filter := relation.ClientByID(ref)
	if byEmail {
		filter = relation.ClientByEmail(ref)
	}
	clients, err := uc.store.List(ctx, uc.tables.Clients, domain.ListOptions{Filter: filter, MaxRecords: 1})
	if err != nil {
		return nil, fmt.Errorf("fetch client: %w", err)
	}

	bundle := &domain.RecordBundle{
		Videos:    []domain.Record{},
		Contracts: []domain.Record{},
		Team:      []domain.Record{},
	}
	if len(clients) == 0 {
		return bundle, nil
	}
	bundle.Client = &clients[0]
	company := fieldmap.Client(clients[0]).CompanyName

	if bundle.Videos, err = uc.store.List(ctx, uc.tables.Videos, domain.ListOptions{Filter: relation.Videos(company, uc.policy.Videos)}); err != nil {
		return nil, fmt.Errorf("fetch videos: %w", err)
	}
	if bundle.Contracts, err = uc.store.List(ctx, uc.tables.Contracts, domain.ListOptions{Filter: relation.Contracts(company)}); err != nil {
		return nil, fmt.Errorf("fetch contracts: %w", err)
	}
	if bundle.Team, err = uc.store.List(ctx, uc.tables.Team, domain.ListOptions{Filter: relation.Team(company, uc.policy.Team)}); err != nil {
		return nil, fmt.Errorf("fetch team: %w", err)
	}
	return bundle, nil
}

// requireArgs takes name/value pairs and rejects the first blank value.
func requireArgs(operation string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return domain.NewError(domain.ErrInvalidInput, operation, pairs[i]+" is required")
		}
	}
	return nil
}
