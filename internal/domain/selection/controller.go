package selection

import (
	"time"

	"github.com/yeecord/dashboard/internal/domain/model"
)

// DefaultStagger — задержка между открытием соседних загрузок.
// Браузеры блокируют серию window.open из одного обработчика события,
// поэтому каждая загрузка открывается в своей задаче.
const DefaultStagger = 500 * time.Millisecond

// Scheduler откладывает выполнение функции. Реализация по умолчанию — time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Opener открывает URL скачивания (новая вкладка, HTTP-загрузка и т.п.).
// Ошибки открытия не возвращаются: заблокированная загрузка теряется молча.
type Opener interface {
	Open(url string)
}

// OpenerFunc — адаптер функции к Opener.
type OpenerFunc func(url string)

// Open вызывает f(url).
func (f OpenerFunc) Open(url string) { f(url) }

// TimerScheduler — Scheduler на time.AfterFunc. Отменить запланированные вызовы нельзя.
type TimerScheduler struct{}

// AfterFunc запускает f через d.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Download — одна запланированная загрузка.
type Download struct {
	RecordingID string
	URL         string
	Delay       time.Duration
}

// Controller управляет выбором записей на одной отрисовке страницы.
// Записи хранятся в порядке сервера (новые первыми).
// Время берётся из clock при каждом вызове, без кэширования.
type Controller struct {
	recordings []model.Recording
	selected   Set
	clock      func() time.Time
	stagger    time.Duration
	baseURL    string
}

// Option настраивает Controller.
type Option func(*Controller)

// WithClock задаёт источник текущего времени.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithStagger задаёт шаг задержки между загрузками.
func WithStagger(d time.Duration) Option {
	return func(c *Controller) { c.stagger = d }
}

// WithBaseURL задаёт префикс URL скачивания (например, https://yeecord.com).
// Без него URL относительные: /rec/{id}?key={key}.
func WithBaseURL(base string) Option {
	return func(c *Controller) { c.baseURL = base }
}

// NewController создаёт контроллер для списка записей с пустым выбором.
func NewController(recordings []model.Recording, opts ...Option) *Controller {
	c := &Controller{
		recordings: recordings,
		selected:   NewSet(),
		clock:      time.Now,
		stagger:    DefaultStagger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RestoreSet восстанавливает выбор из недоверенного ввода (значения формы).
// Истёкшие и неизвестные идентификаторы отбрасываются.
func (c *Controller) RestoreSet(ids []string) {
	now := c.clock()
	requested := NewSet(ids...)
	restored := NewSet()
	for i := range c.recordings {
		rec := &c.recordings[i]
		if requested.Has(rec.ID) && !rec.Expired(now) {
			restored = restored.with(rec.ID)
		}
	}
	c.selected = restored
}

// Selected возвращает копию текущего выбора.
func (c *Controller) Selected() Set {
	return c.selected.Clone()
}

// Recordings возвращает записи в порядке сервера.
func (c *Controller) Recordings() []model.Recording {
	return c.recordings
}

// IsExpired проверяет запись на текущий момент.
func (c *Controller) IsExpired(rec *model.Recording) bool {
	return rec.Expired(c.clock())
}

// AllSelectable возвращает неистёкшие записи в порядке сервера.
func (c *Controller) AllSelectable() []model.Recording {
	now := c.clock()
	out := make([]model.Recording, 0, len(c.recordings))
	for _, rec := range c.recordings {
		if !rec.Expired(now) {
			out = append(out, rec)
		}
	}
	return out
}

// AllSelected — выбраны все доступные записи (и хотя бы одна есть).
func (c *Controller) AllSelected() bool {
	selectable := c.AllSelectable()
	if len(selectable) == 0 {
		return false
	}
	for _, rec := range selectable {
		if !c.selected.Has(rec.ID) {
			return false
		}
	}
	return true
}

// ToggleSelect переключает принадлежность id выбору.
// Для истёкших и отсутствующих в списке записей элемент выбора не отображается,
// такие вызовы ничего не меняют.
func (c *Controller) ToggleSelect(id string) {
	rec := c.find(id)
	if rec == nil || rec.Expired(c.clock()) {
		return
	}
	if c.selected.Has(id) {
		c.selected = c.selected.without(id)
	} else {
		c.selected = c.selected.with(id)
	}
}

// ToggleAll переключает между «ничего не выбрано» и «выбраны все доступные».
// Из частичного выбора всегда переходит к «выбраны все».
func (c *Controller) ToggleAll() {
	if c.AllSelected() {
		c.selected = NewSet()
		return
	}
	selectable := c.AllSelectable()
	ids := make([]string, 0, len(selectable))
	for _, rec := range selectable {
		ids = append(ids, rec.ID)
	}
	c.selected = NewSet(ids...)
}

// DownloadPlan возвращает загрузки для выбранных неистёкших записей.
// Фильтр применяется в момент вызова: записи, истёкшие после выбора,
// и идентификаторы из устаревшей отрисовки пропускаются.
func (c *Controller) DownloadPlan() []Download {
	now := c.clock()
	plan := make([]Download, 0, c.selected.Len())
	for i := range c.recordings {
		rec := &c.recordings[i]
		if !c.selected.Has(rec.ID) || rec.Expired(now) {
			continue
		}
		plan = append(plan, Download{
			RecordingID: rec.ID,
			URL:         c.DownloadURL(rec),
			Delay:       time.Duration(len(plan)) * c.stagger,
		})
	}
	return plan
}

// DownloadURL возвращает ссылку скачивания записи с учётом базового адреса.
func (c *Controller) DownloadURL(rec *model.Recording) string {
	return c.baseURL + rec.DownloadPath()
}

// DownloadSelected планирует открытие загрузок: i-я открывается через i×stagger.
// Возвращает количество запланированных загрузок.
func (c *Controller) DownloadSelected(s Scheduler, o Opener) int {
	plan := c.DownloadPlan()
	for _, d := range plan {
		url := d.URL
		s.AfterFunc(d.Delay, func() { o.Open(url) })
	}
	return len(plan)
}

func (c *Controller) find(id string) *model.Recording {
	for i := range c.recordings {
		if c.recordings[i].ID == id {
			return &c.recordings[i]
		}
	}
	return nil
}
