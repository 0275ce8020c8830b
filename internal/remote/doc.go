// Package remote is the HTTP client for the feed API. It satisfies both the
// page loader used by the pagination engine and the reaction writer used by
// the mutation coordinator.
package remote
