package tracker

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
)

// decodeRoster parses the students slot. An empty or null value asks the
// caller to seed the roster; an empty array is a real, empty roster.
func decodeRoster(data []byte) ([]student.Student, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, true, nil
	}
	var list []student.Student
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false, err
	}
	if list == nil {
		list = []student.Student{}
	}
	return list, false, nil
}

func decodeLedger(data []byte) (attendance.Ledger, error) {
	ledger := attendance.NewLedger()
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ledger, nil
	}
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, err
	}
	for date, day := range ledger {
		if day == nil {
			ledger[date] = make(attendance.DayRecord)
		}
	}
	return ledger, nil
}

// encodeState marshals both slots. Empty collections encode as [] and {}.
func encodeState(list []student.Student, ledger attendance.Ledger) ([]byte, []byte, error) {
	if list == nil {
		list = []student.Student{}
	}
	if ledger == nil {
		ledger = attendance.NewLedger()
	}
	students, err := json.Marshal(list)
	if err != nil {
		return nil, nil, err
	}
	records, err := json.Marshal(ledger)
	if err != nil {
		return nil, nil, err
	}
	return students, records, nil
}

func fingerprint(students, records []byte) string {
	h := sha256.New()
	h.Write(students)
	h.Write([]byte{0})
	h.Write(records)
	return hex.EncodeToString(h.Sum(nil))
}
