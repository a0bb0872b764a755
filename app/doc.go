// Package app is the BadUSB application context.
//
// [New] builds the context in a fixed order. It loads settings, opens the
// screen, wires the dispatcher to the scene manager and adds the views.
// Then it acquires the USB guard and picks the first scene. [App.Run]
// drives the event loop. [App.Close] tears down in reverse, except that
// settings are saved late and the USB configuration is restored last.
//
// Scene behavior lives in the scene_*.go files. [App] dispatches scene
// events through a single switch over [scene.ID].
package app
