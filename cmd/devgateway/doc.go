// Command devgateway runs the in-memory development gateway.
//
// It serves the websocket protocol on /ws and accepts JSON event payloads
// on POST /inject, which are pushed to every logged-in bot:
//
//	curl -d '{"kind":"friend_message","friend_message":{"from":20001,"elements":[{"type":"text","text":"hi"}]}}' \
//	  http://127.0.0.1:8080/inject
package main
