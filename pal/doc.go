/*Package pal implements the three-phase timeline scheduler at the heart of
  a NAND flash timing model: given a stream of read/write/erase commands
  targeting physical page numbers, it assigns each command a bus-download
  phase (DMA0), a memory-operation phase (MEM), and a bus-upload phase
  (DMA1) on the channel and die that the command's PPN decodes to, while
  ensuring each resource executes only one phase at a time.

  The package is single-threaded and non-suspending: Submit runs to
  completion without yielding, ticks are logical (not wall-clock), and
  callers that want concurrent submission must serialize externally or
  use one Facade per goroutine.
*/
package pal
