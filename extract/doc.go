// Package extract turns free-form traveler messages into structured
// core.TravelContext updates.
//
// Extraction is a pure, order-sensitive pipeline of independent Rule
// functions. Each rule receives the parsed Input and the context produced by
// the previous rule and returns an updated copy; no rule mutates its input and
// none performs I/O. Two tie-break rules matter to callers:
//
//   - group size: the last "N명" mention wins ("9명 … 4명만" → 4)
//   - budget: the first matching idiom wins ("만원" suffix, then a
//     total/budget keyword, then a bare 2–4 digit number)
package extract
