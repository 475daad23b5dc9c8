package mcpadapter

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/verticalview/client-portal/internal/core/domain"
	"github.com/verticalview/client-portal/internal/core/ports"
)

const defaultMaxRecords = 100

type listRecordsTool struct {
	records ports.RecordService
}

func (t *listRecordsTool) Definition() mcp.Tool {
	return mcp.NewTool("airtable_list_records",
		mcp.WithDescription("List records from an Airtable table with optional filtering and sorting"),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("The name or ID of the table (e.g., 'Clients', 'Vidéos', 'Contrats', 'Équipe')"),
		),
		mcp.WithString("filterByFormula",
			mcp.Description("Airtable formula to filter records (optional)"),
		),
		mcp.WithNumber("maxRecords",
			mcp.Description("Maximum number of records to return (default: 100)"),
		),
		mcp.WithArray("sort",
			mcp.Description("Array of sort objects with field and direction"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"field":     map[string]any{"type": "string"},
					"direction": map[string]any{"type": "string", "enum": []string{"asc", "desc"}},
				},
			}),
		),
		mcp.WithString("view",
			mcp.Description("Name of a view to use (optional)"),
		),
	)
}

func (t *listRecordsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := req.RequireString("table")
	if err != nil {
		return errorResult(err), nil
	}
	sort, err := sortArgument(req.GetArguments()["sort"])
	if err != nil {
		return errorResult(err), nil
	}

	records, err := t.records.List(ctx, table, domain.ListOptions{
		Filter:     req.GetString("filterByFormula", ""),
		MaxRecords: req.GetInt("maxRecords", defaultMaxRecords),
		Sort:       sort,
		View:       req.GetString("view", ""),
	})
	if err != nil {
		return errorResult(err), nil
	}
	if records == nil {
		records = []domain.Record{}
	}
	return jsonResult(map[string]any{
		"count":   len(records),
		"records": records,
	})
}

type getRecordTool struct {
	records ports.RecordService
}

func (t *getRecordTool) Definition() mcp.Tool {
	return mcp.NewTool("airtable_get_record",
		mcp.WithDescription("Get a single record by its ID from an Airtable table"),
		mcp.WithString("table", mcp.Required(), mcp.Description("The name or ID of the table")),
		mcp.WithString("recordId", mcp.Required(), mcp.Description("The record ID (starts with 'rec')")),
	)
}

func (t *getRecordTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	record, err := t.records.Get(ctx, req.GetString("table", ""), req.GetString("recordId", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(record)
}

type createRecordTool struct {
	records ports.RecordService
}

func (t *createRecordTool) Definition() mcp.Tool {
	return mcp.NewTool("airtable_create_record",
		mcp.WithDescription("Create a new record in an Airtable table"),
		mcp.WithString("table", mcp.Required(), mcp.Description("The name or ID of the table")),
		mcp.WithObject("fields", mcp.Required(), mcp.Description("The fields to set for the new record")),
	)
}

func (t *createRecordTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := fieldsArgument(req.GetArguments()["fields"])
	if err != nil {
		return errorResult(err), nil
	}
	record, err := t.records.Create(ctx, req.GetString("table", ""), fields)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{"success": true, "record": record})
}

type updateRecordTool struct {
	records ports.RecordService
}

func (t *updateRecordTool) Definition() mcp.Tool {
	return mcp.NewTool("airtable_update_record",
		mcp.WithDescription("Update an existing record in an Airtable table"),
		mcp.WithString("table", mcp.Required(), mcp.Description("The name or ID of the table")),
		mcp.WithString("recordId", mcp.Required(), mcp.Description("The record ID to update")),
		mcp.WithObject("fields", mcp.Required(), mcp.Description("The fields to update")),
	)
}

func (t *updateRecordTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := fieldsArgument(req.GetArguments()["fields"])
	if err != nil {
		return errorResult(err), nil
	}
	record, err := t.records.Update(ctx, req.GetString("table", ""), req.GetString("recordId", ""), fields)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{"success": true, "record": record})
}

type deleteRecordTool struct {
	records ports.RecordService
}

func (t *deleteRecordTool) Definition() mcp.Tool {
	return mcp.NewTool("airtable_delete_record",
		mcp.WithDescription("Delete a record from an Airtable table"),
		mcp.WithString("table", mcp.Required(), mcp.Description("The name or ID of the table")),
		mcp.WithString("recordId", mcp.Required(), mcp.Description("The record ID to delete")),
	)
}

func (t *deleteRecordTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recordID := req.GetString("recordId", "")
	if err := t.records.Delete(ctx, req.GetString("table", ""), recordID); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Record %s deleted successfully", recordID),
	})
}

type clientDashboardTool struct {
	records ports.RecordService
}

func (t *clientDashboardTool) Definition() mcp.Tool {
	return mcp.NewTool("airtable_get_client_dashboard",
		mcp.WithDescription("Get all data for a client dashboard (client info, videos, contracts, team members)"),
		mcp.WithString("clientRecordId", mcp.Required(), mcp.Description("The client record ID or email")),
		mcp.WithBoolean("useEmail", mcp.Description("Set to true if providing an email instead of record ID")),
	)
}

func (t *clientDashboardTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bundle, err := t.records.ClientBundle(ctx, req.GetString("clientRecordId", ""), req.GetBool("useEmail", false))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(bundle)
}

func fieldsArgument(raw any) (domain.Fields, error) {
	if raw == nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "decode arguments", "fields are required")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, domain.NewError(domain.ErrInvalidInput, "decode arguments", "fields must be an object")
	}
	return domain.Fields(obj), nil
}

func sortArgument(raw any) ([]domain.SortSpec, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, domain.NewError(domain.ErrInvalidInput, "decode arguments", "sort must be an array")
	}
	specs := make([]domain.SortSpec, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, domain.NewError(domain.ErrInvalidInput, "decode arguments", "sort entries must be objects")
		}
		field, _ := obj["field"].(string)
		direction, _ := obj["direction"].(string)
		specs = append(specs, domain.SortSpec{Field: field, Direction: domain.SortDirection(direction)})
	}
	return specs, nil
}
