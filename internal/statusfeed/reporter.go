package statusfeed

import (
	"log"

	"auditflow/internal/events"
)

// LogReporter prints run progress to the process log. Attach registers it
// on the bus for all three event types.
type LogReporter struct{}

// Attach subscribes the reporter to the bus.
func (LogReporter) Attach(bus *events.Bus) {
	bus.Subscribe(events.TypeProgress, func(ev events.Event) {
		pct, _ := ev.Payload["progress"].(int)
		task, _ := ev.Payload["task"].(string)
		log.Printf("[%s] %3d%% %s", ev.Sender, pct, task)
	})
	bus.Subscribe(events.TypeCompleted, func(ev events.Event) {
		log.Printf("[%s] done", ev.Sender)
	})
	bus.Subscribe(events.TypeFailed, func(ev events.Event) {
		detail, _ := ev.Payload["error"].(string)
		log.Printf("[%s] FAILED: %s", ev.Sender, detail)
	})
}
