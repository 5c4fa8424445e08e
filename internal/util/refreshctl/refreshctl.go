// Package refreshctl coordina refrescos que se pisan: cada refresco
// recibe una generación y sólo el más reciente puede aplicar su
// resultado. Los resultados de generaciones viejas se descartan.
package refreshctl

import "sync"

// Controller reparte generaciones de refresco.
type Controller struct {
	mu   sync.Mutex
	gen  uint64
	busy bool
}

// New crea un controller en reposo.
func New() *Controller {
	return &Controller{}
}

// Begin arranca un refresco y lo vuelve el único vigente. Un Begin
// posterior invalida a los anteriores aunque sigan en vuelo.
func (c *Controller) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.busy = true
	return c.gen
}

// TryBegin arranca un refresco sólo si no hay otro en vuelo. Para el
// tick automático, que no debe encimarse a sí mismo.
func (c *Controller) TryBegin() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return 0, false
	}
	c.gen++
	c.busy = true
	return c.gen, true
}

// Commit cierra un refresco. Retorna true si la generación sigue
// vigente y el resultado debe aplicarse; false si quedó obsoleta.
func (c *Controller) Commit(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.busy = false
	return true
}

// Busy informa si hay un refresco en vuelo.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}
