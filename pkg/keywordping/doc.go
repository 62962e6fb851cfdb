// Package keywordping decides whether incoming chat messages should be
// treated as personal mentions, based on a user's keyword list and VIP list.
//
// This package allows you to:
//   - Compile a keyword list (plain words, /regex/flags, author, channel or
//     guild scoped lines) into an ordered pattern list
//   - Evaluate messages against the patterns and a VIP allowlist
//   - Flag matching messages as mentioning the current user
//   - Hot-swap settings snapshots while messages are being evaluated
//
// # Basic Usage
//
// The engine needs a [Directory] to answer identity questions (who am I,
// which guild owns a channel, what is a member's nickname):
//
//	engine, err := keywordping.NewEngine(dir, keywordping.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine.Apply(keywordping.Settings{
//	    Keywords:         []string{"hello", "/^bye$/i", "@alice:urgent"},
//	    WhitelistedUsers: []string{"bob"},
//	})
//
//	res, flagged := engine.HandleMessage(msg)
//	if flagged {
//	    fmt.Printf("mentioned via %s %q\n", res.Reason, res.Keyword)
//	}
//
// # Hosts
//
// A [Host] delivers messages and consumes mention flags. [Engine.Attach]
// wires the two together:
//
//	detach := engine.Attach(host)
//	defer detach()
//
// # Settings Updates
//
// Settings are immutable snapshots. Send new snapshots on a channel and let
// [Engine.Run] recompile the pattern list for each one:
//
//	updates := make(chan keywordping.Settings)
//	go engine.Run(ctx, updates)
//	updates <- current.WithKeywords("deploy", "outage")
//
// See the [keyword] package for the keyword line syntax.
package keywordping
