// Package pagination drives offset-paged list endpoints for a scrolling UI.
//
// A List holds the records loaded so far, the active filter and the cursor.
// LoadNext requests the next page of PageSize records at Offset; an empty
// page marks the list exhausted. Failures are stored in the list state and
// leave the cursor where it was, so calling LoadNext again retries the same
// page.
//
// Example usage:
//
//	emperors, err := pagination.NewEmperorList(api)
//	if err != nil {
//		return err
//	}
//	defer emperors.Close()
//
//	_ = emperors.Refresh(ctx, resource.EmperorFilter{DynastyID: resource.String("ming")})
//	_ = emperors.LoadNext(ctx) // on scroll
//
// Only one page load runs at a time; an extra LoadNext while loading is a
// no-op. Refresh and SetFilter supersede an in-flight load, whose result is
// then discarded.
package pagination
