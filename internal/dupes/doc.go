// Package dupes loads the duplicate feed produced by the beets duplicatez
// plugin and turns it into in-memory duplicate groups.
//
// The feed is a JSON object keyed by the detection key (MusicBrainz track id
// plus album id) whose values are lists of member file paths. Paths are
// NFC-normalized so composed and decomposed accents compare equal, rewritten
// from the beets library root to the Navidrome root, and de-duplicated.
// Groups that collapse below two members are malformed and reported per
// group; they never abort the batch.
package dupes
