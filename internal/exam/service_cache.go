package exam

// Answer keys only change when a new snapshot is published, so they are
// cached for the life of the service; InvalidateAnswerKeys drops them.

func (s *Service) getCachedAnswerKeys(ids []string) (map[string]AnswerKey, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[string]AnswerKey, len(ids))
	queued := make(map[string]struct{})
	missing := make([]string, 0)
	for _, id := range ids {
		if key, ok := s.answerKeys[id]; ok {
			found[id] = key
			continue
		}
		if _, dup := queued[id]; dup {
			continue
		}
		queued[id] = struct{}{}
		missing = append(missing, id)
	}
	return found, missing
}

func (s *Service) setCachedAnswerKeys(keys map[string]AnswerKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, key := range keys {
		s.answerKeys[id] = key
	}
}

func (s *Service) InvalidateAnswerKeys() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answerKeys = make(map[string]AnswerKey)
}
