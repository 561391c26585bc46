package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
)

// ══════════════════════════════════════════════════════════════════════════════
// IMPORT DATA COMMAND
// Replaces the state with slot values taken from elsewhere, typically a
// localStorage dump of the browser tracker. In such a dump each slot value is
// itself a JSON string; raw JSON values are accepted as well.
// ══════════════════════════════════════════════════════════════════════════════

// ImportDataCommand carries raw slot values, or a whole dump object.
type ImportDataCommand struct {
	Students []byte
	Records  []byte
	// Dump, when set, is an object keyed by slot name and wins over the
	// individual fields.
	Dump []byte
}

// ImportDataHandler handles ImportDataCommand.
type ImportDataHandler struct {
	store *tracker.Store
}

// NewImportDataHandler creates a new ImportDataHandler.
func NewImportDataHandler(store *tracker.Store) *ImportDataHandler {
	return &ImportDataHandler{store: store}
}

// Handle imports the data.
func (h *ImportDataHandler) Handle(ctx context.Context, cmd ImportDataCommand) error {
	students, records := cmd.Students, cmd.Records

	if len(bytes.TrimSpace(cmd.Dump)) > 0 {
		var dump map[string]json.RawMessage
		if err := json.Unmarshal(cmd.Dump, &dump); err != nil {
			return fmt.Errorf("import_data: parse dump: %w", err)
		}
		var err error
		if students, err = slotValue(dump[tracker.SlotStudents]); err != nil {
			return fmt.Errorf("import_data: %s: %w", tracker.SlotStudents, err)
		}
		if records, err = slotValue(dump[tracker.SlotDailyRecords]); err != nil {
			return fmt.Errorf("import_data: %s: %w", tracker.SlotDailyRecords, err)
		}
	}

	if len(bytes.TrimSpace(students)) == 0 && len(bytes.TrimSpace(records)) == 0 {
		return errors.New("import_data: nothing to import")
	}
	return h.store.Import(ctx, students, records)
}

// slotValue unquotes a string-encoded slot and passes raw JSON through.
func slotValue(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return raw, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return []byte(s), nil
}
