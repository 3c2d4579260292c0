// Package state holds the mutable, per-agent scratch state (todo list,
// scratchpad notes, turn history) that is not part of the coordination hub.
package state

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// TodoStatus is a todo item's lifecycle state.
type TodoStatus string

const (
	TodoPending   TodoStatus = "pending"
	TodoCompleted TodoStatus = "completed"
)

// TodoItem is a single entry in the todo list.
type TodoItem struct {
	Content string
	Status  TodoStatus
}

// TodoManager tracks an agent's todo list across turns.
type TodoManager struct {
	mu     sync.RWMutex
	items  map[int]*TodoItem
	nextID int
}

// NewTodoManager returns an empty todo manager.
func NewTodoManager() *TodoManager {
	return &TodoManager{items: make(map[int]*TodoItem), nextID: 1}
}

// Add creates a new pending item and returns its ID.
func (m *TodoManager) Add(content string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.items[id] = &TodoItem{Content: content, Status: TodoPending}
	m.nextID++
	return id
}

// Get returns the item by ID and whether it exists.
func (m *TodoManager) Get(id int) (TodoItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return TodoItem{}, false
	}
	return *item, true
}

// Complete marks id as completed. Reports whether id existed.
func (m *TodoManager) Complete(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return false
	}
	item.Status = TodoCompleted
	return true
}

// Delete removes id from the list. Reports whether id existed.
func (m *TodoManager) Delete(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return false
	}
	delete(m.items, id)
	return true
}

// ViewAll renders the todo list, sorted by ID, in the "[✓] [3] content"
// format the original tool output used.
func (m *TodoManager) ViewAll() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.items) == 0 {
		return "Todo list is empty."
	}

	ids := make([]int, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	lines := []string{"Todo List:"}
	for _, id := range ids {
		item := m.items[id]
		marker := "[ ]"
		if item.Status == TodoCompleted {
			marker = "[✓]"
		}
		lines = append(lines, fmt.Sprintf("%s [%d] %s", marker, id, item.Content))
	}
	return strings.Join(lines, "\n")
}

// Reset clears all items and resets the ID counter.
func (m *TodoManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[int]*TodoItem)
	m.nextID = 1
}
