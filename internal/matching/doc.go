// Package matching decides whether two differently labeled tracks from two catalogs are the same recording.
//
// # Normalization
//
// YouTube only exposes a free-text video title and an uploader channel. [Clean] strips structural noise in four
// ordered passes:
//
//  1. [CleanTracklisting] : vinyl side markers ("A1. ", "B. ")
//  2. [CleanLabelOrCatalogNumber] : bracketed labels and catalog numbers ("[TMZ12006]"), greedy
//  3. [CleanPremierePrefix] : "PREMIERE: " style prefixes
//  4. [CleanParentheses] : junk parentheticals, keeping remix and version tags
//
// [SplitArtistsFromTitle] then splits the cleaned string on the first separator found in [TitleSeparators] and the
// artist credit on [ArtistSeparators]. Auto-generated " - Topic" channels skip both steps.
//
// # Scoring
//
// [Score] returns a non-negative risk, 0 being a perfect match, built from the fraction of missing artists and the
// position of the first diverging title character. [Selector] accepts the lowest-risk candidate only when its risk is
// strictly below the threshold (default 1.0). Missed matches are preferred over wrong ones.
package matching
