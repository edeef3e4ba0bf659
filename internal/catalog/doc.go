// Package catalog parses the application catalog returned by a Roku device.
//
// GET /query/apps answers with a document of repeated app elements:
//
//	<apps>
//	    <app id="12" type="appl" version="5.1.5">Netflix</app>
//	    <app id="837" type="appl" version="2.23.1">YouTube</app>
//	</apps>
//
// Only the id attribute and the element text are used. Parsing is streaming:
// the decoder's token stream drives a two-state machine (outside/inside an app
// element) and character data is concatenated across tokens, so names split
// across several reads are reassembled. Entries with an empty id or a blank
// name are dropped without aborting the parse.
package catalog
