package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/mint/event"
	"github.com/xraph/mint/id"
	"github.com/xraph/mint/role"
	"github.com/xraph/mint/types"
)

// eventModel is the relational shape of a journal event. Principal
// columns not set for a kind are stored as empty strings; amounts are
// stored as decimal strings so the full 256-bit range survives.
type eventModel struct {
	grove.BaseModel `grove:"table:mint_events"`

	Sequence  uint64    `grove:"sequence,pk"`
	ID        string    `grove:"id"`
	Kind      string    `grove:"kind"`
	FromAddr  string    `grove:"from_addr"`
	ToAddr    string    `grove:"to_addr"`
	Owner     string    `grove:"owner"`
	Spender   string    `grove:"spender"`
	Role      string    `grove:"role"`
	Principal string    `grove:"principal"`
	Sender    string    `grove:"sender"`
	Amount    string    `grove:"amount"`
	Prev      string    `grove:"prev"`
	Timestamp time.Time `grove:"timestamp"`
	CreatedAt time.Time `grove:"created_at"`
}

func toEventModel(e *event.Event) *eventModel {
	return &eventModel{
		Sequence:  e.Sequence,
		ID:        e.ID.String(),
		Kind:      string(e.Kind),
		FromAddr:  string(e.From),
		ToAddr:    string(e.To),
		Owner:     string(e.Owner),
		Spender:   string(e.Spender),
		Role:      string(e.Role),
		Principal: string(e.Principal),
		Sender:    string(e.Sender),
		Amount:    e.Amount.String(),
		Prev:      e.Prev.String(),
		Timestamp: e.Timestamp.UTC(),
		CreatedAt: now(),
	}
}

func fromEventModel(m *eventModel) (*event.Event, error) {
	evtID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount(m.Amount)
	if err != nil {
		return nil, err
	}
	prev, err := types.ParseAmount(m.Prev)
	if err != nil {
		return nil, err
	}

	return &event.Event{
		ID:        evtID,
		Sequence:  m.Sequence,
		Kind:      event.Kind(m.Kind),
		From:      types.Address(m.FromAddr),
		To:        types.Address(m.ToAddr),
		Owner:     types.Address(m.Owner),
		Spender:   types.Address(m.Spender),
		Role:      role.Role(m.Role),
		Principal: types.Address(m.Principal),
		Sender:    types.Address(m.Sender),
		Amount:    amount,
		Prev:      prev,
		Timestamp: m.Timestamp,
	}, nil
}

func fromEventModels(models []eventModel) ([]*event.Event, error) {
	result := make([]*event.Event, len(models))
	for i := range models {
		e, err := fromEventModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}
