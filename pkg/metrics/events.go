package metrics

import (
	"context"
)

// RecordEvent records a custom event with a name and set of key-value pairs
func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	if app := appFromContext(ctx); app != nil {
		app.RecordCustomEvent(eventName, kvPairs)
	}
}
