package music

import (
	"sync"
	"testing"
)

func TestSkipReserveAdmitsOneVotePerGuild(t *testing.T) {
	c := NewSkipCommand(&Deps{})

	const racers = 16
	var wg sync.WaitGroup
	claims := make(chan bool, racers)
	for n := 0; n < racers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claims <- c.reserve("g1")
		}()
	}
	wg.Wait()
	close(claims)

	won := 0
	for claimed := range claims {
		if claimed {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("%d racers claimed the vote slot, want 1", won)
	}

	// Another guild is unaffected, and release frees the slot for reuse.
	if !c.reserve("g2") {
		t.Fatal("reserve for a different guild failed")
	}
	c.release("g1")
	if !c.reserve("g1") {
		t.Fatal("reserve after release failed")
	}
}

func TestSkipComponentIgnoresReservedSlot(t *testing.T) {
	c := NewSkipCommand(&Deps{})
	c.reserve("g1")

	// A reserved-but-unpublished slot must read as "no vote running".
	c.mu.Lock()
	sv := c.active["g1"]
	c.mu.Unlock()
	if sv != nil {
		t.Fatal("placeholder slot carries a vote")
	}
}

func TestStopReserveAdmitsOneConfirmPerGuild(t *testing.T) {
	c := NewStopCommand(&Deps{})

	const racers = 16
	var wg sync.WaitGroup
	claims := make(chan bool, racers)
	for n := 0; n < racers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claims <- c.reserve("g1")
		}()
	}
	wg.Wait()
	close(claims)

	won := 0
	for claimed := range claims {
		if claimed {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("%d racers claimed the confirm slot, want 1", won)
	}

	c.release("g1")
	if !c.reserve("g1") {
		t.Fatal("reserve after release failed")
	}
}
