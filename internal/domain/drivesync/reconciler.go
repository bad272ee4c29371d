// Пакет drivesync — согласование локальных настроек облачного бэкапа с сервером.
//
// Машина состояний: Synced(confirmed) → Pending(desired, confirmed) →
// Synced(desired) при успехе | Synced(confirmed) при ошибке.
// Локальное состояние обновляется оптимистично и откатывается при ошибке.
// В полёте всегда не больше одного запроса: изменение, пришедшее во время
// Pending, запоминается (последнее побеждает) и отправляется после завершения.
package drivesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yeecord/dashboard/internal/domain/model"
)

// Тексты диалога ошибки.
const (
	ErrorTitle   = "An error occurred."
	ErrorMessage = "An error occurred while updating your drive settings."
)

// State — состояние согласования.
type State int

const (
	// StateSynced — локальное состояние подтверждено сервером.
	StateSynced State = iota
	// StatePending — запрос обновления в полёте.
	StatePending
)

func (s State) String() string {
	switch s {
	case StateSynced:
		return "synced"
	case StatePending:
		return "pending"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Remote — удалённый ресурс настроек. Запрос несёт полное желаемое состояние.
type Remote interface {
	UpdateDrive(ctx context.Context, desired model.DriveSettings) error
}

// RemoteError — сервер ответил не-2xx. Message — поле "error" тела ответа (может быть пустым).
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("сервер вернул статус %d", e.Status)
	}
	return e.Message
}

// Dialog — модальное окно с ошибкой.
type Dialog struct {
	Title   string
	Message string
}

// Notifier показывает диалог пользователю.
type Notifier interface {
	Notify(d Dialog)
}

// NotifierFunc — адаптер функции к Notifier.
type NotifierFunc func(d Dialog)

// Notify вызывает f(d).
func (f NotifierFunc) Notify(d Dialog) { f(d) }

// Reconciler хранит локальные и подтверждённые настройки одного пользователя.
// Безопасен для конкурентного использования.
type Reconciler struct {
	mu        sync.Mutex
	remote    Remote
	notifier  Notifier
	logger    *slog.Logger
	confirmed model.DriveSettings
	local     model.DriveSettings
	state     State
	queued    *model.DriveSettings
}

// New создаёт Reconciler в состоянии Synced(confirmed).
// notifier может быть nil — тогда диалоги только логируются.
func New(confirmed model.DriveSettings, remote Remote, notifier Notifier, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		remote:    remote,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "drive_reconciler")),
		confirmed: confirmed,
		local:     confirmed,
		state:     StateSynced,
	}
}

// Local возвращает локальное (возможно, неподтверждённое) состояние.
func (r *Reconciler) Local() model.DriveSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.local
}

// Confirmed возвращает последнее подтверждённое сервером состояние.
func (r *Reconciler) Confirmed() model.DriveSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.confirmed
}

// Loading — запрос в полёте; элементы управления должны быть заблокированы.
func (r *Reconciler) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == StatePending
}

// State возвращает текущее состояние машины.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Change применяет желаемое состояние оптимистично и отправляет его на сервер.
//
// В состоянии Synced вызов блокируется до завершения запроса (и запросов,
// поставленных в очередь за это время) и возвращает ошибку последнего из них.
// В состоянии Pending desired только запоминается, вызов возвращается сразу.
// Совпадение с подтверждённым состоянием запрос не порождает.
func (r *Reconciler) Change(ctx context.Context, desired model.DriveSettings) error {
	desired = desired.WithDefaults()

	r.mu.Lock()
	r.local = desired
	if r.state == StatePending {
		r.queued = &desired
		r.mu.Unlock()
		r.logger.Debug("Изменение поставлено в очередь до завершения запроса")
		return nil
	}
	if desired == r.confirmed {
		r.mu.Unlock()
		return nil
	}
	r.state = StatePending
	r.mu.Unlock()

	for {
		err := r.remote.UpdateDrive(ctx, desired)

		r.mu.Lock()
		if err != nil {
			r.local = r.confirmed
			r.queued = nil
			r.state = StateSynced
			r.mu.Unlock()

			r.logger.Warn("Ошибка обновления настроек облачного бэкапа, откат",
				slog.String("error", err.Error()),
			)
			r.notify(dialogFor(err))
			return err
		}

		r.confirmed = desired
		next := r.queued
		r.queued = nil
		if next == nil || *next == r.confirmed {
			r.state = StateSynced
			r.mu.Unlock()
			return nil
		}
		desired = *next
		r.mu.Unlock()
	}
}

func (r *Reconciler) notify(d Dialog) {
	if r.notifier != nil {
		r.notifier.Notify(d)
	}
}

// dialogFor формирует диалог ошибки: сообщение сервера или транспорта
// дописывается отдельной строкой.
func dialogFor(err error) Dialog {
	detail := err.Error()
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		detail = remoteErr.Message
	}

	msg := ErrorMessage
	if detail != "" {
		msg += "\n" + detail
	}
	return Dialog{Title: ErrorTitle, Message: msg}
}
