// Package scanner reads a profile's most recent posts and turns them into
// engagement statistics.
//
// A scan resolves the profile, walks its timeline page by page in the order
// Instagram returns it and stops at the post limit. The pacer runs between
// consecutive posts. Scans are strictly sequential and a Scanner may be
// reused for any number of them.
//
//	client := instagram.NewClient(30*time.Second, log)
//	s := scanner.New(client, pacing.Default())
//	result, err := s.Scan(ctx, scanner.Request{Username: "nasa"})
//	switch {
//	case errors.IsRemoteBlocked(err):
//		// back off for errors.CooldownPeriod
//	case err != nil:
//		// profile missing, private or unreadable
//	case result == nil:
//		// no posts
//	}
package scanner
