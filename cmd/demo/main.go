// Command demo wires a toy DimensionAdapter over synthetic objects and
// drives a few simulated frames through cullthrottle.Scheduler, printing
// the iterator's yielded tuples — ambient developer tooling in the same
// spirit as the teacher's cmd/server, cmd/bot, cmd/replay entrypoints, not
// part of the library's own public surface.
package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/boatbomber/CullThrottle"
	"github.com/go-gl/mathgl/mgl64"
)

// prop is a synthetic scene object: a position and a radius.
type prop struct {
	name     string
	position mgl64.Vec3
	radius   float64
}

type demoCamera struct {
	position mgl64.Vec3
}

func (c *demoCamera) Pose() cullthrottle.Pose {
	return cullthrottle.Pose{Position: c.position, Orientation: mgl64.QuatIdent()}
}

func (c *demoCamera) FOVDegrees() float64 { return 70 }
func (c *demoCamera) Aspect() float64     { return 16.0 / 9.0 }

func newAdapter() *cullthrottle.AdapterTable {
	return &cullthrottle.AdapterTable{
		Classify: func(obj any) (cullthrottle.DimensionKind, bool) {
			if _, ok := obj.(*prop); ok {
				return cullthrottle.RigidBody, true
			}
			return 0, false
		},
		Readers: map[cullthrottle.DimensionKind]cullthrottle.ReaderSet{
			cullthrottle.RigidBody: {
				Pose: func(obj any) (cullthrottle.Pose, bool) {
					p := obj.(*prop)
					return cullthrottle.Pose{Position: p.position, Orientation: mgl64.QuatIdent()}, true
				},
				Bounds: func(obj any) (cullthrottle.HalfExtents, bool) {
					p := obj.(*prop)
					return cullthrottle.HalfExtents{X: p.radius, Y: p.radius, Z: p.radius}, true
				},
				Observe: func(obj any, onChange func()) (cullthrottle.Observer, bool) {
					return nil, false // static props, no change notifications
				},
			},
		},
	}
}

func main() {
	camera := &demoCamera{position: mgl64.Vec3{0, 0, 0}}
	adapter := newAdapter()

	scheduler, err := cullthrottle.New(camera, adapter, nil, cullthrottle.DefaultConfig())
	if err != nil {
		panic(err)
	}

	scheduler.OnObjectEnteredView(func(h cullthrottle.Handle) {
		fmt.Printf("entered view: handle %d\n", h)
	})
	scheduler.OnObjectExitedView(func(h cullthrottle.Handle) {
		fmt.Printf("exited view: handle %d\n", h)
	})

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		p := &prop{
			name:     fmt.Sprintf("prop-%d", i),
			position: mgl64.Vec3{rng.Float64()*400 - 200, rng.Float64()*40 - 20, rng.Float64()*400 - 200},
			radius:   1 + rng.Float64()*3,
		}
		if _, err := scheduler.AddObject(p); err != nil {
			fmt.Printf("skipping %s: %v\n", p.name, err)
		}
	}

	for frame := 0; frame < 5; frame++ {
		camera.position = camera.position.Add(mgl64.Vec3{1, 0, 0})
		scheduler.BeginFrame()

		visible := scheduler.GetVisibleObjects()
		fmt.Printf("frame %d: %d objects staged visible\n", frame, len(visible))

		count := 0
		for update := range scheduler.IterateObjectsToUpdate(context.Background()) {
			count++
			_ = update
		}
		fmt.Printf("frame %d: %d objects refreshed\n", frame, count)
	}
}
