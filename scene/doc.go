// Package scene implements a stack-based scene manager.
//
// A scene is one state of the application's control state machine. The
// [Manager] keeps a stack of scene IDs and forwards every event to a single
// [Handler] together with the ID of the scene on top of the stack. The
// handler is a plain function, typically a switch over the scene ID, and
// reports whether it consumed the event:
//
//	m := scene.NewManager(func(id scene.ID, ev scene.Event) bool {
//	    switch id {
//	    case scene.Work:
//	        return onWork(ev)
//	    ...
//	    }
//	    return false
//	})
//	m.Next(scene.FileSelect)
//
// An unconsumed back event pops the stack. When the last scene is popped,
// [Manager.HandleBack] returns false so the owner can stop its event loop.
package scene
