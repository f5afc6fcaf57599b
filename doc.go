/*
Package nutscan pages through the keyspace and the collections of a
Redis-like store without ever holding a whole keyspace or collection in
memory.

# Usage

A Session couples a key pattern with the targets it scans: the numbered
databases of a standalone store or the shards of a cluster. Each LoadNext
returns the next non-empty batch of typed keys and whether more may follow;
once every target is exhausted it keeps returning an empty batch.

Each key comes back as a CollectionElement. Load fetches the next page of its
members and returns a new element; the argument is never modified, so a
failed or cancelled call can simply be repeated. Lists and sorted sets page
by offset, sets and hashes by store cursor, strings in one call.

Any backend implementing Store can be scanned; see the memstore package for
an in-memory one and httpview for a JSON API over sessions.
*/
package nutscan
