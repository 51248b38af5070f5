package creature

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
)

// Stats are 32-bit floats. The decay constants are small enough that the
// precision matters: 1.05 energy must fall below the death threshold after a
// single tick.

const (
	DeathThreshold = 1.0

	fullThreshold   = 2.0
	restockAmount   = 10
	consumeAmount   = 5
	consumeRelief   = 30.0
	restThreshold   = 80.0
	starvingLimit   = 100.0
	deathSentinel   = math.MaxFloat32
	defaultRoomFill = 100
)

// Room holds the consumable stock next to the creature.
type Room struct {
	Food  uint32
	Water uint32
}

func (r Room) String() string {
	return fmt.Sprintf("food: %d, water: %d", r.Food, r.Water)
}

// Creature is the simulated entity. Name never changes after creation.
// Callers are responsible for serializing access.
type Creature struct {
	Name      string
	Age       float32
	Hunger    float32
	Thirst    float32
	Happiness float32
	Energy    float32
	Room      Room
}

// Build creates a fresh creature with the starting stats.
func Build(name string) *Creature {
	return &Creature{
		Name:      name,
		Age:       0,
		Hunger:    10,
		Thirst:    10,
		Happiness: 100,
		Energy:    100,
		Room:      Room{Food: defaultRoomFill, Water: defaultRoomFill},
	}
}

// Feed lowers hunger by one. A creature that is already full refuses and the
// room is restocked with food instead.
func (c *Creature) Feed() {
	if c.Hunger < fullThreshold {
		slog.Info("creature is full, restocking food", "name", c.Name)
		c.Room.Food += restockAmount
		return
	}
	c.Hunger -= 1.0
}

// Quench lowers thirst by one and gives a little energy. A creature that is
// not thirsty refuses and the room is restocked with water instead.
func (c *Creature) Quench() {
	if c.Thirst < fullThreshold {
		slog.Info("creature is not thirsty, restocking water", "name", c.Name)
		c.Room.Water += restockAmount
		return
	}
	c.Thirst -= 1.0
	c.Energy += 5.0
}

func (c *Creature) Play() {
	c.Happiness += 10.0
	c.Energy -= 20.0
}

// Eat consumes food from the room when the creature is hungry enough and has
// the energy to do it. Otherwise nothing happens.
func (c *Creature) Eat() {
	if c.Room.Food >= consumeAmount && c.Hunger > consumeRelief && c.Energy > DeathThreshold {
		c.Room.Food -= consumeAmount
		c.Hunger -= consumeRelief
		c.Energy -= 10.0
		c.Happiness += 5.0
	}
}

// Drink is Eat for water and thirst.
func (c *Creature) Drink() {
	if c.Room.Water >= consumeAmount && c.Thirst > consumeRelief && c.Energy > DeathThreshold {
		c.Room.Water -= consumeAmount
		c.Thirst -= consumeRelief
		c.Energy -= 10.0
		c.Happiness += 5.0
	}
}

// Rest recovers energy when below 80. The hunger term is not normalized like
// the other two.
func (c *Creature) Rest() {
	if c.Energy >= restThreshold {
		return
	}
	c.Energy += 20.0 + 20.0*(c.Happiness/100.0) + 20.0*(100.0-c.Thirst)/100.0 + 20.0*(100.0-c.Hunger)
	c.Happiness += 10.0
}

// TimePass applies one decay tick. A creature whose energy drops below the
// death threshold is killed and receives no further adjustment this tick.
func (c *Creature) TimePass() {
	c.Age += 0.01
	c.Happiness -= 0.05
	c.Thirst += 0.02
	c.Hunger += 0.01
	c.Energy -= 0.05

	if c.Energy < DeathThreshold {
		c.Kill()
		return
	}
	if c.Hunger > starvingLimit || c.Thirst > starvingLimit {
		c.Energy -= 1.0
	}
}

func (c *Creature) IsDead() bool {
	return c.Energy < DeathThreshold
}

// Kill marks the creature dead by pinning its age to the largest float32.
func (c *Creature) Kill() {
	c.Age = deathSentinel
}

// Status renders the creature the way it is reported to clients.
func (c *Creature) Status() string {
	return fmt.Sprintf("Name: %s, Age: %s, Hunger: %s, Thirst: %s, Happiness: %s, Energy: %s, Room: %s",
		c.Name,
		FormatStat(c.Age),
		FormatStat(c.Hunger),
		FormatStat(c.Thirst),
		FormatStat(c.Happiness),
		FormatStat(c.Energy),
		c.Room,
	)
}

func (c *Creature) String() string {
	return c.Status()
}

// FormatStat prints the shortest decimal that round-trips the float32,
// never using exponent notation. Infinities print as inf and -inf.
func FormatStat(f float32) string {
	switch {
	case math.IsInf(float64(f), 1):
		return "inf"
	case math.IsInf(float64(f), -1):
		return "-inf"
	}
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
