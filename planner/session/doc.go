// Package session stores the editable grids behind GridService.
//
// Sessions use 4-character hexadecimal IDs generated from crypto/rand and
// are looked up case-insensitively. A Manager keeps them in memory and, when
// given a SessionPersistence, writes every change through to storage and
// falls back to storage on a cache miss. FilePersistence stores one JSON
// document per session holding its metadata and a full grid snapshot, so a
// session survives restarts even if the layout it came from changes.
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions")
//	manager := session.NewManagerWithPersistence(store)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Warn(err)
//	}
//
//	sess, err := manager.Create("", "classic", g)
package session
