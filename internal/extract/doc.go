// Package extract turns raw HTML into structured event data.
//
// Extraction has two halves:
//
//   - PageExtractor strips boilerplate (navigation, footers, scripts,
//     cookie banners) and isolates a title plus a main-content text
//     block. The content region is located by an explicit ordered list
//     of strategies (article element, main element, content-class div,
//     whole document), each independently testable, stopping at the
//     first success.
//   - FieldExtractor applies regex and dictionary heuristics to the
//     extracted text: event type classification, two-pass date
//     extraction with real-calendar validation, registration deadline,
//     city/organizer promotion from a closed override list, audience
//     tagging, and the team-required flag.
//
// Design decision: goquery is used for the DOM work because the
// boilerplate lists and fallback selectors are naturally expressed as
// CSS selectors, and goquery tolerates the malformed markup university
// sites publish. The regex heuristics deliberately stay simple and
// inspectable; this is not general NER.
package extract
