package keyring

// MockStore implements Store in memory. It can be configured to return
// errors for testing error handling.
type MockStore struct {
	data   map[entry]string
	getErr error
	setErr error
	delErr error
}

type entry struct {
	service, key string
}

// NewMockStore creates an empty mock store.
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

// Len reports how many secrets are stored.
func (m *MockStore) Len() int {
	return len(m.data)
}

// WithGetError makes every Get fail with err.
func (m *MockStore) WithGetError(err error) *MockStore {
	m.getErr = err
	return m
}

// WithSetError makes every Set fail with err.
func (m *MockStore) WithSetError(err error) *MockStore {
	m.setErr = err
	return m
}

// WithDeleteError makes every Delete fail with err.
func (m *MockStore) WithDeleteError(err error) *MockStore {
	m.delErr = err
	return m
}

// WithCredentials pre-populates the client id and secret.
func (m *MockStore) WithCredentials(clientID, clientSecret string) *MockStore {
	m.data[entry{ServiceName, KeyClientID}] = clientID
	m.data[entry{ServiceName, KeyClientSecret}] = clientSecret
	return m
}
