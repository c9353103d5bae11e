// Package mouse turns raw mouse reports into gestures: clicks counted up to
// triple, drags with their start point, drops, and wheel scrolls.
//
//	tr := mouse.NewTracker(mouse.DefaultConfig())
//	for {
//	    in, _ := tc.GetInputBlocking(ctx)
//	    if g, ok := tr.Feed(in, time.Now()); ok {
//	        switch g.Kind {
//	        case mouse.GestureClick:
//	            // g.Count is 1, 2 or 3
//	        case mouse.GestureDrag:
//	            // g.Delta is the movement since the last report
//	        }
//	    }
//	}
//
// A Tracker is not safe for concurrent use.
package mouse
