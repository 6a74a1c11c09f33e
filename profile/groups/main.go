// Profiling:
// go build ./profile/groups
// go tool pprof -http=":8000" -nodefraction=0.001 ./groups mem.pprof

package main

import (
	"github.com/pkg/profile"

	"github.com/edwinsyarief/kumi"
)

const numTags = 6

func main() {
	rounds := 20
	iters := 2000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

// groups declares every pair and triple of consecutive tags plus every single tag.
func groups() []kumi.Group {
	var out []kumi.Group
	for t := kumi.Tag(0); t < numTags; t++ {
		out = append(out, kumi.NewGroup(t))
		if t+1 < numTags {
			out = append(out, kumi.NewGroup(t, t+1))
		}
		if t+2 < numTags {
			out = append(out, kumi.NewGroup(t, t+1, t+2))
		}
	}
	return out
}

func run(rounds, iters, numEntities int) {
	for round := range rounds {
		w, err := kumi.NewWorld(groups(), kumi.WithInitialCapacity(numEntities))
		if err != nil {
			panic(err)
		}
		ents := w.CreateEntities(numEntities, 0)
		for i := range iters {
			e := ents[(i*7+round)%numEntities]
			tag := kumi.Tag((i + round) % numTags)
			if w.HasTag(e, tag) {
				_ = w.RemoveTag(e, tag)
			} else {
				_ = w.AddTag(e, tag)
			}
			if i%100 == 0 {
				view, _ := w.View(0, 1)
				for view.Next() {
					_ = view.Entity()
				}
			}
		}
		w.ClearEntities()
	}
}
