// Publisher is a command line client for the Involve Asia publisher API.
//
// It authenticates with the key and secret taken from DP_API_KEY and DP_API_SECRET and prints the results of
// the requested operation as JSON.
//
// Usage:
//
//	publisher offers --page 2 --limit 20
//	publisher deeplink --offer-id 42 --url https://shop.example/item --aff-sub campaign
//	publisher version
package main

func main() {
	Execute()
}
