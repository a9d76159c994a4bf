// Package tagnote is the composition root of a headless note store.
//
// Notes form one flat collection, each carrying at most one tag. The whole
// collection is persisted as a single document through a pluggable key-value
// storage, next to two small settings (font size and background image) and a
// background audio player. Screens, navigation and layout belong to the
// caller; everything a UI needs to call lives in the services returned by New.
//
// Storage adapters:
//
//   - "fs" (default): one file per key in a vault directory, atomic writes,
//     optional git commits per write and change watching.
//   - "bolt": a single bbolt database file.
//   - "memory": ephemeral, for tests and throwaway sessions.
//
// Usage:
//
//	app, err := tagnote.New("./vault",
//		tagnote.WithAutoInit(true),
//		tagnote.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer app.Close(ctx)
//
//	note, err := app.Notes.Add(ctx, "Groceries", "milk, eggs", "home")
//	groups := app.Notes.GroupByTag()
package tagnote
