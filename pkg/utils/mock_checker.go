package utils

import "sync"

// MockRootChecker returns canned answers and counts how often it was asked
type MockRootChecker struct {
	mu        sync.Mutex
	IsRoot    bool
	Err       error
	CallCount int
}

func NewMockRootChecker(isRoot bool) *MockRootChecker {
	return &MockRootChecker{IsRoot: isRoot}
}

func (m *MockRootChecker) CheckRoot() (bool, error) {
	m.mu.Lock()
	m.CallCount++
	root, err := m.IsRoot, m.Err
	m.mu.Unlock()
	return root, err
}

// Calls is safe to read while another goroutine calls CheckRoot
func (m *MockRootChecker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}
