package game

import "github.com/pixil98/go-tamo/internal/creature"

// Publisher fans status updates out to subscribers.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Recorder keeps a history of persisted states.
type Recorder interface {
	Record(source string, c *creature.Creature) error
}
