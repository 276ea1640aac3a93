// Package nav implements the view stack that drives navigation.
//
// Every screen the user can be on is a Frame: a view kind plus the cursor,
// tab and filter state local to that view. Frames live on a Stack. Entering a
// detail view pushes a frame; Esc pops one; the number keys collapse the
// stack to a fresh root list. The bottom frame is never popped, so Esc at a
// root view becomes a quit signal for the caller to act on.
//
// Modal overlays (search, environment switcher, help) are ordinary frames
// whose Kind reports Modal() true. The renderer draws them over the frame
// beneath; dismissing one is a plain Pop, which is what makes Esc behave
// uniformly everywhere.
//
// The package is deliberately free of I/O and of any knowledge of the data
// layer. The UI reads the top frame after each mutation and decides what to
// fetch and render.
package nav
