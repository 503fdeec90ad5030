package unittest

import (
	"sync"

	"github.com/anchorage/registry-go/model/registry"
	"github.com/anchorage/registry-go/module"
)

// CurrencyMock implements module.Currency over in-memory free and reserved
// balances.
type CurrencyMock struct {
	mu       sync.Mutex
	free     map[registry.AccountID]registry.Balance
	reserved map[registry.AccountID]registry.Balance
}

var _ module.Currency = (*CurrencyMock)(nil)

func NewCurrencyMock() *CurrencyMock {
	return &CurrencyMock{
		free:     make(map[registry.AccountID]registry.Balance),
		reserved: make(map[registry.AccountID]registry.Balance),
	}
}

// Deposit credits the account's free balance.
func (c *CurrencyMock) Deposit(account registry.AccountID, amount registry.Balance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.free[account] += amount
}

func (c *CurrencyMock) Reserve(account registry.AccountID, amount registry.Balance) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.free[account] < amount {
		return module.ErrInsufficientBalance
	}
	c.free[account] -= amount
	c.reserved[account] += amount
	return nil
}

func (c *CurrencyMock) Unreserve(account registry.AccountID, amount registry.Balance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reserved[account] < amount {
		amount = c.reserved[account]
	}
	c.reserved[account] -= amount
	c.free[account] += amount
}

func (c *CurrencyMock) RepatriateReserved(from, to registry.AccountID, amount registry.Balance) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reserved[from] < amount {
		return module.ErrInsufficientBalance
	}
	c.reserved[from] -= amount
	c.reserved[to] += amount
	return nil
}

// FreeOf returns the account's free balance.
func (c *CurrencyMock) FreeOf(account registry.AccountID) registry.Balance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.free[account]
}

// ReservedOf returns the account's reserved balance.
func (c *CurrencyMock) ReservedOf(account registry.AccountID) registry.Balance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reserved[account]
}

// EventRecorder implements module.Events by recording every emitted event
// in order.
type EventRecorder struct {
	mu     sync.Mutex
	Events []registry.Event
}

var _ module.Events = (*EventRecorder)(nil)

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

func (r *EventRecorder) Emit(event registry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
}

// ByType returns the recorded events of the given type, in emission order.
func (r *EventRecorder) ByType(eventType registry.EventType) []registry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var filtered []registry.Event
	for _, event := range r.Events {
		if event.Type() == eventType {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// Reset drops all recorded events.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = nil
}

// Dispatch records one validator invocation seen by a DispatcherMock.
type Dispatch struct {
	Validator registry.AccountID
	Payload   []byte
	Value     registry.Balance
	GasBudget uint64
}

// DispatcherMock implements module.Dispatcher by recording dispatches. An
// optional handler simulates the validator running within the same
// execution window; a non-nil Err fails the dispatch outright.
type DispatcherMock struct {
	mu         sync.Mutex
	Dispatches []Dispatch
	Handler    func(Dispatch) error
	Err        error
}

var _ module.Dispatcher = (*DispatcherMock)(nil)

func NewDispatcherMock() *DispatcherMock {
	return &DispatcherMock{}
}

func (d *DispatcherMock) Dispatch(validator registry.AccountID, payload []byte, value registry.Balance, gasBudget uint64) error {
	if d.Err != nil {
		return d.Err
	}

	dispatch := Dispatch{
		Validator: validator,
		Payload:   payload,
		Value:     value,
		GasBudget: gasBudget,
	}
	d.mu.Lock()
	d.Dispatches = append(d.Dispatches, dispatch)
	handler := d.Handler
	d.mu.Unlock()

	if handler != nil {
		return handler(dispatch)
	}
	return nil
}

// Last returns the most recent dispatch.
func (d *DispatcherMock) Last() Dispatch {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Dispatches[len(d.Dispatches)-1]
}

// Size returns the number of recorded dispatches.
func (d *DispatcherMock) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Dispatches)
}
