// Package weakhash provides hash tables whose entries refer to objects they do
// not own.
//
// Four shapes share one engine:
//
//   - WeakKeyMap: weak keys, strong values.
//   - WeakValueMap: strong keys, weak values.
//   - WeakWeakMap: weak keys and weak values.
//   - WeakSet: weak elements.
//
// An entry whose weak field's referent was destroyed is never returned by a
// lookup or yielded by iteration. It is removed lazily: walking a bucket chain
// for an insert, lookup or erase unlinks the expired entries met on the way,
// and growth, Rehash and iteration drop them too. PurgeExpired sweeps the whole
// table for callers that need Len to be exact.
//
// # Liveness
//
// How a weak reference notices destruction is up to a Liveness. Pointers uses
// weak.Pointer, so referents expire when the garbage collector reclaims them.
// Counted uses the rc package, where a referent expires the moment its last
// rc.Ptr is released.
//
// Keys are hashed and compared through a Hasher over their strong form. The
// hash is computed once, when the entry is created, so an entry keeps its
// place even after its key expires.
//
// # Configuration
//
// Config is a plain struct. Start from NewConfig, set what you need and pass
// it to a constructor, which validates it with Config.Build.
//
// # Concurrency
//
// Tables are not safe for concurrent use. Only the referents may be destroyed
// concurrently; both liveness mechanisms tolerate that.
package weakhash
