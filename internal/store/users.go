package store

// Lang returns the stored language preference for a user, or "en" for
// users who never picked one. A broken read is treated like a missing row;
// the default is always safe.
func (s *PersistentStore) Lang(userID int64) string {
	var lang string
	if err := s.db.QueryRow("SELECT lang FROM users WHERE user_id = ?", userID).Scan(&lang); err != nil {
		return "en"
	}
	return lang
}

func (s *PersistentStore) SetLang(userID int64, lang string) error {
	_, err := s.db.Exec(
		"INSERT INTO users (user_id, lang) VALUES (?, ?) ON CONFLICT(user_id) DO UPDATE SET lang = excluded.lang",
		userID, lang,
	)
	return err
}
