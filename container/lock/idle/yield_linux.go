package idle

import "golang.org/x/sys/unix"

// OSYield hands the thread's quantum back to the kernel with sched_yield(2).
// Combined with runtime.LockOSThread it is the closest Go gets to
// std::this_thread::yield.
func OSYield() {
	_, _, _ = unix.Syscall(unix.SYS_SCHED_YIELD, 0, 0, 0)
}
