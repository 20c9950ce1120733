package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/streamweave/console/pkg/resource"
)

func newListCommand() *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List records of a resource",
		Flags:       flag.NewFlagSet("list", flag.ExitOnError),
		Run:         runList,
	}

	cmd.Flags.String("resource", "", "Resource name (e.g. instruments, schedules)")
	cmd.Flags.Bool("include-deleted", false, "Include soft-deleted records")
	cmd.Flags.String("filter", "", "Extra query parameters, e.g. 'instrument_id=...&unread=true'")

	return cmd
}

func runList(args []string) error {
	cmd := newListCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	name := cmd.Flags.Lookup("resource").Value.String()
	includeDeleted := cmd.Flags.Lookup("include-deleted").Value.String() == "true"
	rawFilter := cmd.Flags.Lookup("filter").Value.String()

	filters, err := parseFilters(includeDeleted, rawFilter)
	if err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	ctx := context.Background()
	adapter, err := app.adapterFor(ctx, name)
	if err != nil {
		return err
	}

	items, err := adapter.list(ctx, filters)
	if err != nil {
		return err
	}
	return printJSON(items)
}

func newGetCommand() *Command {
	cmd := &Command{
		Name:        "get",
		Description: "Get one record by id",
		Flags:       flag.NewFlagSet("get", flag.ExitOnError),
		Run:         runGet,
	}

	cmd.Flags.String("resource", "", "Resource name")
	cmd.Flags.String("id", "", "Record id")

	return cmd
}

func runGet(args []string) error {
	cmd := newGetCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	name := cmd.Flags.Lookup("resource").Value.String()
	id := cmd.Flags.Lookup("id").Value.String()
	if id == "" {
		return fmt.Errorf("id is required")
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	ctx := context.Background()
	adapter, err := app.adapterFor(ctx, name)
	if err != nil {
		return err
	}

	record, err := adapter.get(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(record)
}

func newCreateCommand() *Command {
	cmd := &Command{
		Name:        "create",
		Description: "Create a record from a JSON payload",
		Flags:       flag.NewFlagSet("create", flag.ExitOnError),
		Run:         runCreate,
	}

	cmd.Flags.String("resource", "", "Resource name")
	cmd.Flags.String("data", "", "JSON payload, or @path to read a file")

	return cmd
}

func runCreate(args []string) error {
	cmd := newCreateCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	name := cmd.Flags.Lookup("resource").Value.String()
	raw, err := readPayload(cmd.Flags.Lookup("data").Value.String())
	if err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	ctx := context.Background()
	adapter, err := app.adapterFor(ctx, name)
	if err != nil {
		return err
	}

	record, err := adapter.create(ctx, raw)
	if err != nil {
		return err
	}
	return printJSON(record)
}

func newUpdateCommand() *Command {
	cmd := &Command{
		Name:        "update",
		Description: "Apply a partial update from a JSON payload",
		Flags:       flag.NewFlagSet("update", flag.ExitOnError),
		Run:         runUpdate,
	}

	cmd.Flags.String("resource", "", "Resource name")
	cmd.Flags.String("id", "", "Record id")
	cmd.Flags.String("data", "", "JSON payload, or @path to read a file")

	return cmd
}

func runUpdate(args []string) error {
	cmd := newUpdateCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	name := cmd.Flags.Lookup("resource").Value.String()
	id := cmd.Flags.Lookup("id").Value.String()
	if id == "" {
		return fmt.Errorf("id is required")
	}
	raw, err := readPayload(cmd.Flags.Lookup("data").Value.String())
	if err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	ctx := context.Background()
	adapter, err := app.adapterFor(ctx, name)
	if err != nil {
		return err
	}

	record, err := adapter.update(ctx, id, raw)
	if err != nil {
		return err
	}
	return printJSON(record)
}

func newDeleteCommand() *Command {
	cmd := &Command{
		Name:        "delete",
		Description: "Soft-delete a record",
		Flags:       flag.NewFlagSet("delete", flag.ExitOnError),
		Run:         runDelete,
	}

	cmd.Flags.String("resource", "", "Resource name")
	cmd.Flags.String("id", "", "Record id")

	return cmd
}

func runDelete(args []string) error {
	cmd := newDeleteCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	name := cmd.Flags.Lookup("resource").Value.String()
	id := cmd.Flags.Lookup("id").Value.String()
	if id == "" {
		return fmt.Errorf("id is required")
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	ctx := context.Background()
	adapter, err := app.adapterFor(ctx, name)
	if err != nil {
		return err
	}

	if err := adapter.del(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted %s %s\n", strings.TrimSuffix(name, "s"), id)
	return nil
}

func newRestoreCommand() *Command {
	cmd := &Command{
		Name:        "restore",
		Description: "Restore a soft-deleted record",
		Flags:       flag.NewFlagSet("restore", flag.ExitOnError),
		Run:         runRestore,
	}

	cmd.Flags.String("resource", "", "Resource name")
	cmd.Flags.String("id", "", "Record id")

	return cmd
}

func runRestore(args []string) error {
	cmd := newRestoreCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	name := cmd.Flags.Lookup("resource").Value.String()
	id := cmd.Flags.Lookup("id").Value.String()
	if id == "" {
		return fmt.Errorf("id is required")
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	ctx := context.Background()
	adapter, err := app.adapterFor(ctx, name)
	if err != nil {
		return err
	}

	record, err := adapter.restore(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(record)
}

func newTriggerCommand() *Command {
	cmd := &Command{
		Name:        "trigger",
		Description: "Start a manual harvest run for a schedule",
		Flags:       flag.NewFlagSet("trigger", flag.ExitOnError),
		Run:         runTrigger,
	}

	cmd.Flags.String("schedule", "", "Schedule id")

	return cmd
}

func runTrigger(args []string) error {
	cmd := newTriggerCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	id := cmd.Flags.Lookup("schedule").Value.String()
	if id == "" {
		return fmt.Errorf("schedule id is required")
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := app.requireAdmin(ctx); err != nil {
		return err
	}

	flowRunID, err := app.Resources.TriggerHarvest(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Harvest started, flow run %s\n", flowRunID)
	return nil
}

// parseFilters builds list filters from the flag values.
func parseFilters(includeDeleted bool, rawFilter string) (filters resource.Filters, err error) {
	filters.IncludeDeleted = includeDeleted
	if rawFilter != "" {
		filters.Extra, err = url.ParseQuery(rawFilter)
		if err != nil {
			return filters, fmt.Errorf("invalid filter %q: %w", rawFilter, err)
		}
	}
	return filters, nil
}

// readPayload resolves the --data flag: inline JSON, or @path for a file.
func readPayload(value string) (json.RawMessage, error) {
	if value == "" {
		return nil, fmt.Errorf("data is required")
	}
	if strings.HasPrefix(value, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		return data, nil
	}
	if !json.Valid([]byte(value)) {
		return nil, fmt.Errorf("payload is not valid JSON")
	}
	return json.RawMessage(value), nil
}
