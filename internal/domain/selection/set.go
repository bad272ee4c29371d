// Пакет selection — выбор записей и пакетное скачивание на странице записей.
// Выбор хранится явным множеством идентификаторов, а не флагами на строках.
package selection

import "sort"

// Set — множество идентификаторов записей. Нулевое значение — пустое множество.
type Set struct {
	ids map[string]struct{}
}

// NewSet создаёт множество из переданных идентификаторов.
func NewSet(ids ...string) Set {
	s := Set{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Has проверяет принадлежность id множеству.
func (s Set) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len возвращает размер множества.
func (s Set) Len() int {
	return len(s.ids)
}

// IDs возвращает идентификаторы в отсортированном порядке.
func (s Set) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone возвращает независимую копию.
func (s Set) Clone() Set {
	return NewSet(s.IDs()...)
}

// Equal сравнивает два множества.
func (s Set) Equal(other Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for id := range s.ids {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// with возвращает копию с добавленным id.
func (s Set) with(id string) Set {
	next := s.Clone()
	next.ids[id] = struct{}{}
	return next
}

// without возвращает копию без id.
func (s Set) without(id string) Set {
	next := s.Clone()
	delete(next.ids, id)
	return next
}
