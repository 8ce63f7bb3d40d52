/*
The sync package implements the tree synchronization algorithm. A pass walks
one tree top-down and compares every entry against the entry at the same
relative path in a second tree.

There are two kinds of passes:
1) Mirror -- Entries missing from the second tree are created, and files whose
   contents differ are copied over. Contents are compared by digest, so
   modification times alone never trigger a copy.
2) Purge -- Entries missing from the second tree are deleted from the tree
   being walked.

A full cycle runs a Mirror pass from the source to the replica, followed by a
Purge pass from the replica to the source. Both passes share the same walk, and
only differ in the actions taken for each entry.

Failures are isolated to the entry that caused them. They're logged, and the
walk continues with the next entry.
*/
package sync
