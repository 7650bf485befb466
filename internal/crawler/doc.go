// Package crawler provides bounded breadth-first crawling of a single
// site's internal link graph.
//
// # Components
//
//   - Spider: the BFS traversal with frontier, visited set, page budget,
//     and politeness delay
//   - LinkClassifier: the cheap first-stage keyword filter deciding
//     which links are event candidates
//   - ParseLinks: anchor harvesting with surrounding block context
//
// # Termination
//
// The crawl always terminates: the visited set prevents revisiting and
// the page budget bounds discovery, so even a pathological link graph
// costs at most maxPages fetches. Cancellation via context halts a crawl
// promptly with a partial candidate set.
//
// Design decision: the crawler is hand-rolled on golang.org/x/net/html
// rather than built on a crawling framework because the traversal policy
// is the interesting part here: visited-set bookkeeping, same-host
// canonicalization, and candidate classification need to be directly
// inspectable and testable.
package crawler
