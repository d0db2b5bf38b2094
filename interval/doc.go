/*Package interval reconciles GFF/GTF records by genomic position.

  Records are first sorted by (key, begin), where the key is usually the
  sequence name, or the sequence name concatenated with the strand when
  features from different sources must not be merged across strands.  A
  Grouper then makes a single left-to-right sweep, clustering records whose
  closed intervals transitively overlap.  A record joins the running group
  only if its begin is strictly less than the group's stop, so intervals which
  merely touch stay in separate groups.

  Synchronizer and Matcher walk two independently sorted streams in lock-step
  so that every query record can be classified against the target records on
  the same key without a cross product.  Union flattens groups into per-key
  disjoint envelopes for point queries and BED output.

  Positions are 1-based and closed, as in the annotation files themselves.
*/
package interval
