package net

// SessionStore tracks live sessions by id. Game loop only.
type SessionStore struct {
	byID  map[uint64]*Session
	order []uint64
}

func NewSessionStore() *SessionStore {
	return &SessionStore{byID: make(map[uint64]*Session)}
}

func (st *SessionStore) Add(sess *Session) {
	if _, ok := st.byID[sess.ID]; ok {
		return
	}
	st.byID[sess.ID] = sess
	st.order = append(st.order, sess.ID)
}

func (st *SessionStore) Remove(id uint64) {
	if _, ok := st.byID[id]; !ok {
		return
	}
	delete(st.byID, id)
	for i, sid := range st.order {
		if sid == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
}

func (st *SessionStore) Get(id uint64) *Session {
	return st.byID[id]
}

// ByPlayer finds the session that owns the given player entity.
func (st *SessionStore) ByPlayer(playerID string) *Session {
	for _, id := range st.order {
		if s := st.byID[id]; s.PlayerID == playerID {
			return s
		}
	}
	return nil
}

func (st *SessionStore) Count() int {
	return len(st.byID)
}

// ForEach visits sessions in connection order.
func (st *SessionStore) ForEach(fn func(*Session)) {
	ids := append([]uint64(nil), st.order...)
	for _, id := range ids {
		if s, ok := st.byID[id]; ok {
			fn(s)
		}
	}
}
