// Package instagram provides a client for Instagram's web API.
//
// The client resolves a profile, pages through its timeline media and can
// exchange a username and password for a web session. All calls take a
// context and are throttled by an optional ratelimit.Limiter.
//
// Example usage:
//
//	client := instagram.NewClient(30*time.Second, log, instagram.WithLimiter(ratelimit.PerMinute(60)))
//	client.ApplySession(session)
//
//	user, err := client.FetchProfile(ctx, "username")
//	if err != nil {
//	    if errors.IsRemoteBlocked(err) {
//	        // back off for errors.CooldownPeriod
//	    }
//	}
//
//	media := &user.EdgeOwnerToTimelineMedia
//	for {
//	    for _, edge := range media.Edges {
//	        fmt.Println(edge.Node.Likes(), edge.Node.Comments())
//	    }
//	    if !media.PageInfo.HasNextPage {
//	        break
//	    }
//	    media, err = client.FetchMedia(ctx, user.ID, media.PageInfo.EndCursor)
//	}
//
// Errors are *errors.Error values from igreport/pkg/errors.
package instagram
