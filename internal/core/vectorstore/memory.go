package vectorstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore はプロセス内のフォールバック用ベクトルストア。
// 稼働中のインスタンス内でリクエストをまたいで共有されるため、
// 全操作をミューテックスで保護する。レコードマップは初回利用時に初期化される。
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore は空のMemoryStoreを作成する
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ Store = (*MemoryStore)(nil)

// Upsert はレコードをIDで上書き登録する
func (s *MemoryStore) Upsert(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init()
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

// Delete は指定IDのレコードを削除する（存在しないIDは無視）
func (s *MemoryStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init()
	for _, id := range ids {
		delete(s.records, id)
	}
	return nil
}

// Query は全レコードとのコサイン類似度を計算し、
// プロジェクトで絞り込んだうえでスコア降順の上位TopK件を返す
func (s *MemoryStore) Query(ctx context.Context, vector []float32, params QueryParams) ([]Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init()
	projectID := params.ProjectID.String()

	matches := make([]Match, 0, len(s.records))
	for _, r := range s.records {
		if r.Metadata.ProjectID != projectID {
			continue
		}
		matches = append(matches, Match{
			ID:       r.ID,
			Score:    CosineSimilarity(vector, r.Values),
			Metadata: r.Metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if params.TopK > 0 && len(matches) > params.TopK {
		matches = matches[:params.TopK]
	}
	return matches, nil
}

// Len は保持しているレコード数を返す
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *MemoryStore) init() {
	if s.records == nil {
		s.records = make(map[string]Record)
	}
}
