package refreshctl_test

import (
	"testing"

	"github.com/dropDatabas3/prepmood/internal/util/refreshctl"
)

func TestCommit_StaleGenerationDiscarded(t *testing.T) {
	c := refreshctl.New()

	old := c.Begin()
	fresh := c.Begin() // invalida a old aunque siga en vuelo

	if c.Commit(old) {
		t.Fatal("stale generation should not commit")
	}
	if !c.Commit(fresh) {
		t.Fatal("current generation should commit")
	}
}

func TestTryBegin_DoesNotOverlap(t *testing.T) {
	c := refreshctl.New()

	gen, ok := c.TryBegin()
	if !ok {
		t.Fatal("first TryBegin should succeed")
	}
	if !c.Busy() {
		t.Fatal("controller should report busy while in flight")
	}
	if _, ok := c.TryBegin(); ok {
		t.Fatal("TryBegin should refuse while another refresh is in flight")
	}

	if !c.Commit(gen) {
		t.Fatal("commit of the only generation should apply")
	}
	if c.Busy() {
		t.Fatal("controller should be idle after commit")
	}
	if _, ok := c.TryBegin(); !ok {
		t.Fatal("TryBegin should succeed again after commit")
	}
}

func TestBegin_PreemptsTryBegin(t *testing.T) {
	c := refreshctl.New()

	auto, _ := c.TryBegin()
	manual := c.Begin() // un refresco manual pisa al tick automático

	if c.Commit(auto) {
		t.Fatal("preempted tick should be discarded")
	}
	if !c.Commit(manual) {
		t.Fatal("manual refresh should commit")
	}
}
