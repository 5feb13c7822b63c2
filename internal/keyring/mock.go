package keyring

type entry struct{ service, key string }

// MockStore is an in-memory Store for tests. Errors can be injected per
// operation.
type MockStore struct {
	data   map[entry]string
	getErr error
	setErr error
	delErr error
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{data: make(map[entry]string)}
}

func (m *MockStore) Get(service, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[entry{service, key}]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MockStore) Set(service, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[entry{service, key}] = value
	return nil
}

func (m *MockStore) Delete(service, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.data, entry{service, key})
	return nil
}

func (m *MockStore) WithGetError(err error) *MockStore {
	m.getErr = err
	return m
}

func (m *MockStore) WithSetError(err error) *MockStore {
	m.setErr = err
	return m
}

func (m *MockStore) WithDeleteError(err error) *MockStore {
	m.delErr = err
	return m
}

// WithData pre-populates a secret.
func (m *MockStore) WithData(service, key, value string) *MockStore {
	m.data[entry{service, key}] = value
	return m
}
