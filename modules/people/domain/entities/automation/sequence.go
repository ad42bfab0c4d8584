package automation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SequenceStep is one scheduled delivery derived from a template step.
type SequenceStep struct {
	Key         string
	ScheduledAt time.Time
	Metadata    map[string]any
}

// NormalizeSequenceSteps turns raw template steps into scheduled steps.
// Entries that are not objects are dropped. A step without a key is named
// step-<position>, counted over the raw list.
func NormalizeSequenceSteps(raw []any, now time.Time) []SequenceStep {
	steps := make([]SequenceStep, 0, len(raw))
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		key := strings.TrimSpace(stringValue(obj["key"]))
		if key == "" {
			key = fmt.Sprintf("step-%d", i+1)
		}
		hours := numberValue(obj["delayDays"])*24 + numberValue(obj["delayHours"])
		metadata := sourceMetadata()
		if extra, ok := obj["metadata"].(map[string]any); ok {
			for k, v := range extra {
				metadata[k] = v
			}
			metadata["source"] = Source
		}
		if subject := strings.TrimSpace(stringValue(obj["subject"])); subject != "" {
			metadata["subject"] = subject
		}
		steps = append(steps, SequenceStep{
			Key:         key,
			ScheduledAt: now.Add(time.Duration(hours * float64(time.Hour))),
			Metadata:    metadata,
		})
	}
	return steps
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func numberValue(v any) float64 {
	var f float64
	switch typed := v.(type) {
	case float64:
		f = typed
	case float32:
		f = float64(typed)
	case int:
		f = float64(typed)
	case int64:
		f = float64(typed)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
