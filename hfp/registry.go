package hfp

import "github.com/blueheadset/rfcomm-hfp/at"

// Handler interprets one inbound AT frame against a session, mutating
// state and replying as needed. Returning an error aborts the session.
type Handler func(c *Conn, frame at.Frame) error

type registryKey struct {
	typ     at.Type
	command string
}

// registry is the static (type, command) → handler table. Only frames
// that carry command text participate; a bare OK/ERROR never matches
// here and is only ever resolved through a Conn's expected-handler.
var registry = map[registryKey]Handler{
	{at.CmdTest, "+CIND"}: handleCindTest,
	{at.CmdGet, "+CIND"}:  handleCindGet,
	{at.CmdSet, "+CMER"}:  handleCmerSet,
	{at.Resp, "+CIEV"}:    handleCievResp,
	{at.CmdSet, "+BIA"}:   handleBiaSet,
	{at.CmdSet, "+BRSF"}:  handleBrsfSet,
	{at.Resp, "+BRSF"}:    handleBrsfResp,
	{at.CmdSet, "+VGM"}:   handleVgmSet,
	{at.CmdSet, "+VGS"}:   handleVgsSet,
	{at.CmdGet, "+BTRH"}:  handleBtrhGet,
	{at.CmdSet, "+BCS"}:   handleBcsSet,
	{at.Resp, "+BCS"}:     handleBcsResp,
	{at.CmdSet, "+BAC"}:   handleBacSet,
	{at.CmdSet, "+IPHONEACCEV"}: handleIphoneaccevSet,
	{at.CmdSet, "+XAPL"}:  handleXaplSet,
}

// getHandler looks up the static handler for frame, if any. Resp frames
// with an ambiguous role (e.g. +CIND test vs get responses, both parsed
// as the bare command "+CIND") are disambiguated by the caller via the
// expected-handler slot before ever reaching this table — see Conn.Expect.
func getHandler(frame at.Frame) (Handler, bool) {
	if frame.Command == "" {
		return nil, false
	}
	h, ok := registry[registryKey{frame.Type, frame.Command}]
	return h, ok
}
