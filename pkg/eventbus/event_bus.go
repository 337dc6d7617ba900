package eventbus

import (
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
)

// EventBus carries domain events from the service layer to in-process
// listeners, principally the module hooks that broadcast refresh events to
// connected dashboards. Delivery is synchronous and in subscription order.
type EventBus interface {
	Publish(event any)
	Subscribe(handler any)
	Unsubscribe(handler any)
	Clear()
	SubscribersCount() int
}

type publisher struct {
	log *logrus.Logger

	mu       sync.RWMutex
	handlers []reflect.Value
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	return &publisher{log: log}
}

// Subscribe registers a one-argument function. The argument type selects
// the events the handler receives: an exact type match, or any event
// implementing it when the type is an interface.
func (p *publisher) Subscribe(handler any) {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func || v.Type().NumIn() != 1 {
		panic("eventbus: handler must be a function taking one event argument")
	}
	p.mu.Lock()
	p.handlers = append(p.handlers, v)
	p.mu.Unlock()
}

func (p *publisher) Unsubscribe(handler any) {
	target := reflect.ValueOf(handler)
	if target.Kind() != reflect.Func {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, h := range p.handlers {
		if h.Pointer() == target.Pointer() {
			p.handlers = append(p.handlers[:i], p.handlers[i+1:]...)
			return
		}
	}
}

func (p *publisher) Clear() {
	p.mu.Lock()
	p.handlers = nil
	p.mu.Unlock()
}

func (p *publisher) SubscribersCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handlers)
}

// Publish delivers the event to every matching handler. A panicking
// handler is logged and skipped so one broken listener cannot take down
// the mutation that emitted the event.
func (p *publisher) Publish(event any) {
	if event == nil {
		return
	}
	eventValue := reflect.ValueOf(event)
	eventType := eventValue.Type()

	p.mu.RLock()
	handlers := make([]reflect.Value, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.RUnlock()

	delivered := false
	for _, handler := range handlers {
		if !accepts(handler.Type().In(0), eventType) {
			continue
		}
		delivered = true
		p.call(handler, eventValue)
	}

	if !delivered && p.log != nil {
		p.log.WithField("event", eventType.String()).Debug("eventbus: no subscribers for event")
	}
}

func (p *publisher) call(handler, event reflect.Value) {
	defer func() {
		if r := recover(); r != nil && p.log != nil {
			p.log.WithFields(logrus.Fields{
				"handler": handler.Type().String(),
				"event":   event.Type().String(),
			}).Errorf("eventbus: handler panicked: %v", r)
		}
	}()
	handler.Call([]reflect.Value{event})
}

func accepts(param, event reflect.Type) bool {
	if param.Kind() == reflect.Interface {
		return event.Implements(param)
	}
	return event.AssignableTo(param)
}
