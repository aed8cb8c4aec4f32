package slides

import "fmt"

// Границы масштаба в десятых долях: 0.5..2.0 с шагом 0.1.
// Масштаб хранится целым числом, чтобы повторные шаги не копили ошибку округления.
const (
	zoomMin     = 5
	zoomMax     = 20
	zoomDefault = 10
	zoomStep    = 1
)

// Status — состояние загрузки документа.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Deck — состояние просмотра постраничного документа.
// Не потокобезопасен, сериализацию обеспечивает Viewer.
type Deck struct {
	page      int
	total     int
	zoom      int
	status    Status
	errMsg    string
	completed bool
}

// NewDeck создаёт колоду в состоянии загрузки.
func NewDeck() *Deck {
	return &Deck{
		page:   1,
		zoom:   zoomDefault,
		status: StatusLoading,
	}
}

// Page возвращает текущую страницу (с единицы).
func (d *Deck) Page() int {
	return d.page
}

// TotalPages возвращает число страниц. До загрузки ok == false.
func (d *Deck) TotalPages() (int, bool) {
	return d.total, d.status == StatusReady
}

// DisplayTotal возвращает число страниц для отображения: до загрузки 1.
func (d *Deck) DisplayTotal() int {
	if d.status != StatusReady {
		return 1
	}

	return d.total
}

// Zoom возвращает масштаб.
func (d *Deck) Zoom() float64 {
	return float64(d.zoom) / 10
}

// Status возвращает состояние загрузки.
func (d *Deck) Status() Status {
	return d.status
}

// Error возвращает сообщение об ошибке загрузки.
func (d *Deck) Error() string {
	return d.errMsg
}

// Completed сообщает, находится ли пользователь на последней странице.
func (d *Deck) Completed() bool {
	return d.completed
}

// Progress возвращает долю просмотренного документа.
func (d *Deck) Progress() float64 {
	if d.status != StatusReady {
		return 0
	}

	return float64(d.page) / float64(d.total)
}

// Loaded фиксирует успешную загрузку документа.
// Возвращает true, если пользователь сразу оказался на последней странице.
func (d *Deck) Loaded(total int) bool {
	if d.status != StatusLoading {
		return false
	}

	if total < 1 {
		d.Failed(fmt.Sprintf("document has %d pages", total))
		return false
	}

	d.total = total
	d.status = StatusReady
	d.page = min(d.page, total)

	return d.evaluate()
}

// Failed фиксирует ошибку загрузки. Навигация после этого отключена.
func (d *Deck) Failed(message string) {
	if d.status != StatusLoading {
		return
	}

	d.status = StatusFailed
	d.errMsg = message
}

// ChangePage сдвигает страницу на offset с обрезкой по границам документа.
// Возвращает true при каждом новом приходе на последнюю страницу.
func (d *Deck) ChangePage(offset int) bool {
	if d.status != StatusReady {
		return false
	}

	d.page = clamp(d.page+offset, 1, d.total)

	return d.evaluate()
}

// ZoomIn увеличивает масштаб на шаг, не выше максимума.
func (d *Deck) ZoomIn() bool {
	return d.setZoom(d.zoom + zoomStep)
}

// ZoomOut уменьшает масштаб на шаг, не ниже минимума.
func (d *Deck) ZoomOut() bool {
	return d.setZoom(d.zoom - zoomStep)
}

func (d *Deck) setZoom(zoom int) bool {
	zoom = clamp(zoom, zoomMin, zoomMax)
	if zoom == d.zoom {
		return false
	}

	d.zoom = zoom

	return true
}

// evaluate пересчитывает признак завершения после смены страницы или числа страниц.
func (d *Deck) evaluate() bool {
	atLast := d.page == d.total

	if atLast && !d.completed {
		d.completed = true
		return true
	}

	if !atLast {
		d.completed = false
	}

	return false
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
