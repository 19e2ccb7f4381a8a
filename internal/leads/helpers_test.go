package leads

import "testing"

// storedLead returns a copy of the row kept by the in-memory repository.
func storedLead(t *testing.T, repo *InMemoryRepository, id string) *Lead {
	t.Helper()

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	lead, ok := repo.leads[id]
	if !ok {
		t.Fatalf("lead %q was not stored", id)
	}
	copied := *lead
	return &copied
}
