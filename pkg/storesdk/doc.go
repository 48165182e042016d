// Package storesdk is the client for the storefront REST API.
//
// # Basic Usage
//
// Create a Client, authenticate, and call the typed endpoint methods:
//
//	client := storesdk.New("https://shop.example.com/api/v1")
//
//	resp, err := client.Login(ctx, "a@b.com", "secret")
//	if err != nil {
//		return err
//	}
//
//	page, err := client.Products(ctx, storesdk.ProductQuery{Search: "lamp"})
//
// # Token Handling
//
// The Client owns an access/refresh token pair, persisted through the
// injectable TokenStore (in-memory by default). Every authenticated call
// attaches the access token as a Bearer header.
//
// When a call meets a 401 and a refresh token is held, the Client refreshes
// the pair and replays the call once. The refresh is single-flight: any
// number of concurrent 401s produce exactly one refresh network call, with
// the rest of the requests parked until it settles and then replayed with
// the new token. If the refresh itself fails, every parked request fails
// with KindAuthExpired, the stored tokens are cleared, and the
// OnSessionExpired subscribers fire so cached identity state can be
// dropped.
//
// Access tokens that are inspectable JWTs are refreshed proactively just
// before their exp claim passes, skipping the guaranteed 401 round trip.
//
// # Errors
//
// Every failure surfaces as an *APIError tagged with an ErrorKind. Use the
// predicate helpers to branch:
//
//	if storesdk.IsAuthRequired(err) || storesdk.IsAuthExpired(err) {
//		// redirect to login
//	}
//
// # Pagination
//
// Collection endpoints return Page[T]. The backend mixes paginated
// envelopes and bare arrays; Page decodes both, so Items and Count are
// always populated.
package storesdk
