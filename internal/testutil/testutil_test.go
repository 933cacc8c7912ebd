package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/aldenmeer/gridline/pkg/models"
	"github.com/aldenmeer/gridline/pkg/module"
)

func TestLogger_NotNil(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewStore_Usable(t *testing.T) {
	db := NewStore(t)
	if db == nil {
		t.Fatal("expected non-nil store")
	}
	if err := db.DB().PingContext(context.Background()); err != nil {
		t.Fatalf("PingContext: %v", err)
	}
}

func TestMockBus_RecordsEvents(t *testing.T) {
	bus := NewMockBus()

	ev := module.Event{Topic: "test.topic", Source: "test"}
	if err := bus.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	bus.PublishAsync(context.Background(), module.Event{Topic: "test.async", Source: "test"})

	events := bus.Events()
	if len(events) != 2 {
		t.Fatalf("Events len = %d, want 2", len(events))
	}
	if events[0].Topic != "test.topic" {
		t.Errorf("events[0].Topic = %q, want test.topic", events[0].Topic)
	}
	if events[1].Topic != "test.async" {
		t.Errorf("events[1].Topic = %q, want test.async", events[1].Topic)
	}
}

func TestMockBus_Reset(t *testing.T) {
	bus := NewMockBus()
	_ = bus.Publish(context.Background(), module.Event{Topic: "a"})
	bus.Reset()
	if len(bus.Events()) != 0 {
		t.Error("expected empty events after Reset")
	}
}

func TestClock_Advance(t *testing.T) {
	c := NewClock()
	start := c.Now()
	c.Advance(5 * time.Minute)
	if got := c.Now().Sub(start); got != 5*time.Minute {
		t.Errorf("Advance: elapsed = %v, want 5m", got)
	}
}

func TestClock_Set(t *testing.T) {
	c := NewClock()
	target := time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)
	c.Set(target)
	if !c.Now().Equal(target) {
		t.Errorf("Set: got %v, want %v", c.Now(), target)
	}
}

func TestNewItem_Defaults(t *testing.T) {
	it := NewItem()
	if it.ID == "" {
		t.Error("expected non-empty ID")
	}
	if it.Status != models.ItemStatusInStock {
		t.Errorf("Status = %q, want in_stock", it.Status)
	}
	if it.Name != "test-item" {
		t.Errorf("Name = %q, want test-item", it.Name)
	}
}

func TestNewItem_WithOptions(t *testing.T) {
	it := NewItem(
		WithName("m4 bolt"),
		WithQuantity(0),
		WithStatus(models.ItemStatusOutOfStock),
	)
	if it.Name != "m4 bolt" {
		t.Errorf("Name = %q, want m4 bolt", it.Name)
	}
	if it.Quantity != 0 {
		t.Errorf("Quantity = %d, want 0", it.Quantity)
	}
	if it.Status != models.ItemStatusOutOfStock {
		t.Errorf("Status = %q, want out_of_stock", it.Status)
	}
}
