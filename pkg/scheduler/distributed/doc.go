// Package distributed coordinates scheduled work across multiple application
// instances using Redis.
//
// The building block is a Lease: a Redis key holding the ID of the instance
// that currently owns it, written with SET NX and a TTL so a crashed holder
// frees the lease automatically. Renew and Release are compare-and-act Lua
// scripts, so an instance can never extend or delete a lease it lost.
//
// Guard ties a lease to a scheduler task. Run the same periodic task on every
// instance of a deployment and wrap it with Guard; each period the task
// executes on whichever instance wins the lease and is skipped everywhere
// else:
//
//	lease, err := distributed.NewLease(distributed.Config{
//		Redis: redisClient,
//		Key:   "tempo:lease:cleanup",
//		TTL:   time.Minute,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	s, _ := scheduler.New(2)
//	s.ScheduleAtFixedRate(distributed.Guard(lease, cleanupTask), 0, 5*time.Minute)
//
// The lease is advisory. It guards work that should not run twice, it does
// not fence storage writes; use versioned writes when the guarded work must
// be correct under clock skew or long GC pauses.
package distributed
