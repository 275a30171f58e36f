package backend

import "sync"

// Volatile keeps regions in process memory, for tests and throwaway stores.
type Volatile struct {
	mu      sync.Mutex
	regions map[string][]byte
}

func NewVolatile() *Volatile {
	return &Volatile{regions: make(map[string][]byte)}
}

func (v *Volatile) Load(name string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	data, ok := v.regions[name]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (v *Volatile) Save(name string, data []byte) error {
	return v.SaveAll(map[string][]byte{name: data})
}

func (v *Volatile) SaveAll(regions map[string][]byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for name, data := range regions {
		stored := make([]byte, len(data))
		copy(stored, data)
		v.regions[name] = stored
	}
	return nil
}

func (v *Volatile) Close() error {
	return nil
}
