// Package gui provides the view dispatcher, views, and terminal surface used
// by the BadUSB application.
//
// # Dispatcher
//
// A [Dispatcher] owns a queue of input and custom events and a periodic
// tick. [Dispatcher.Run] drains the queue on a single goroutine, routing
// input to the current [View], custom events to the custom event callback,
// and ticks to the tick callback. Pending custom events are handled before
// the next input event. Input a view does not consume is treated
// as navigation: a back key invokes the navigation callback, and the
// dispatcher stops when that callback returns false.
//
// A [Surface] renders the current view and feeds key input into the queue.
// [Screen] implements it on top of a [tcell.Screen]; it also implements
// [Notifier].
//
// # Views
//
//   - [Widget]: static text with button hints (error screens)
//   - [ItemList]: labelled items with selectable values (configuration)
//   - [FileBrowser]: file list for choosing a script
//   - [WorkView]: script execution status
package gui
