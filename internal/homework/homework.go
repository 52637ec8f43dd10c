package homework

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	ErrNotMapping       = errors.New("response must be an object")
	ErrMissingHomeworks = errors.New("response has no homeworks key")
	ErrNotSequence      = errors.New("homeworks must be a list")
	ErrBadCurrentDate   = errors.New("response has no integer current_date")
	ErrData             = errors.New("invalid homework data")
)

const statusMessage = "Изменился статус проверки работы \"%s\". %s"

// Status is a described homework record.
type Status struct {
	Name    string
	Lesson  string
	Comment string
	Verdict Verdict
	Message string
}

// ExtractHomeworks checks the shape of a decoded API response and returns its
// homeworks list unchanged.
func ExtractHomeworks(resp any) ([]any, error) {
	m, ok := resp.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", ErrNotMapping, resp)
	}

	raw, ok := m["homeworks"]
	if !ok {
		return nil, ErrMissingHomeworks
	}

	homeworks, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", ErrNotSequence, raw)
	}

	return homeworks, nil
}

// CurrentDate returns the server's current_date, which becomes the next cursor.
func CurrentDate(resp any) (int64, error) {
	m, ok := resp.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("%w, got %T", ErrNotMapping, resp)
	}

	switch v := m["current_date"].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBadCurrentDate, err)
		}
		return integral(f)
	case float64:
		return integral(v)
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, ErrBadCurrentDate
	}
}

func integral(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrBadCurrentDate, f)
	}
	return int64(f), nil
}

// Describe turns a homework record into the notification sentence.
func Describe(record any) (string, error) {
	st, err := Parse(record)
	if err != nil {
		return "", err
	}
	return st.Message, nil
}

// Parse validates a homework record and builds its Status.
func Parse(record any) (*Status, error) {
	m, ok := record.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: record must be an object, got %T", ErrData, record)
	}

	rawStatus, ok := m["status"]
	if !ok {
		return nil, fmt.Errorf("%w: no status", ErrData)
	}

	s, _ := rawStatus.(string)
	verdict, ok := ParseVerdict(s)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %v", ErrData, rawStatus)
	}

	rawName, ok := m["homework_name"]
	if !ok {
		return nil, fmt.Errorf("%w: no homework_name", ErrData)
	}
	name := fmt.Sprint(rawName)

	lesson, _ := m["lesson_name"].(string)
	comment, _ := m["reviewer_comment"].(string)

	return &Status{
		Name:    name,
		Lesson:  lesson,
		Comment: comment,
		Verdict: verdict,
		Message: fmt.Sprintf(statusMessage, name, verdict.Text()),
	}, nil
}
