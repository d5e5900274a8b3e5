package world

import (
	"slices"
	"time"

	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/google/uuid"
)

// MessageMaxAge is how long a message waits for an element to appear under its target label.
const MessageMaxAge = 5 * time.Second

type pendingMessage struct {
	msg      event.Message
	queuedAt time.Time
}

// elementStore maps labels to elements and buffers messages until the next update.
// It is only touched from the update thread.
type elementStore struct {
	order    []uuid.UUID
	elements map[uuid.UUID]Element
	labels   map[string]uuid.UUID
	mailbox  map[string][]pendingMessage
}

func newElementStore() *elementStore {
	return &elementStore{
		elements: make(map[uuid.UUID]Element),
		labels:   make(map[string]uuid.UUID),
		mailbox:  make(map[string][]pendingMessage),
	}
}

// store registers el under labels. Labels already taken are moved to the new element.
func (s *elementStore) store(id uuid.UUID, el Element, labels []string) {
	s.order = append(s.order, id)
	s.elements[id] = el
	if len(labels) == 0 {
		labels = []string{id.String()}
	}
	for _, l := range labels {
		s.labels[l] = id
	}
}

// remove drops the element reachable under label together with all its labels.
func (s *elementStore) remove(label string) bool {
	id, ok := s.labels[label]
	if !ok {
		return false
	}
	delete(s.elements, id)
	s.order = slices.DeleteFunc(s.order, func(o uuid.UUID) bool { return o == id })
	for l, owner := range s.labels {
		if owner == id {
			delete(s.labels, l)
		}
	}
	return true
}

func (s *elementStore) addLabels(label string, labels []string) bool {
	id, ok := s.labels[label]
	if !ok {
		return false
	}
	for _, l := range labels {
		s.labels[l] = id
	}
	return true
}

func (s *elementStore) removeLabels(label string, labels []string) bool {
	id, ok := s.labels[label]
	if !ok {
		return false
	}
	for _, l := range labels {
		if s.labels[l] == id {
			delete(s.labels, l)
		}
	}
	return true
}

func (s *elementStore) labelsOf(id uuid.UUID) []string {
	var out []string
	for l, owner := range s.labels {
		if owner == id {
			out = append(out, l)
		}
	}
	slices.Sort(out)
	return out
}

func (s *elementStore) queue(msg event.Message, now time.Time) {
	s.mailbox[msg.To] = append(s.mailbox[msg.To], pendingMessage{msg: msg, queuedAt: now})
}

// take removes and returns the messages addressed to any label of id, oldest first.
func (s *elementStore) take(id uuid.UUID) []event.Message {
	var pending []pendingMessage
	for _, l := range s.labelsOf(id) {
		pending = append(pending, s.mailbox[l]...)
		delete(s.mailbox, l)
	}
	slices.SortStableFunc(pending, func(a, b pendingMessage) int {
		return a.queuedAt.Compare(b.queuedAt)
	})
	out := make([]event.Message, len(pending))
	for i, p := range pending {
		out[i] = p.msg
	}
	return out
}

// expire drops messages older than maxAge and returns them.
func (s *elementStore) expire(now time.Time, maxAge time.Duration) []event.Message {
	var dropped []event.Message
	for to, pending := range s.mailbox {
		kept := pending[:0]
		for _, p := range pending {
			if now.Sub(p.queuedAt) >= maxAge {
				dropped = append(dropped, p.msg)
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) == 0 {
			delete(s.mailbox, to)
		} else {
			s.mailbox[to] = kept
		}
	}
	return dropped
}

func (s *elementStore) count() int {
	return len(s.elements)
}

func (s *elementStore) clear() {
	s.order = nil
	clear(s.elements)
	clear(s.labels)
	clear(s.mailbox)
}
