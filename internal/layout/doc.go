// Package layout rebuilds reading-order text from positioned OCR fragments.
//
// OCR engines return recognitions in detection order. On invoices and
// receipts the item name and its price are separate recognitions at the
// same height, so the reconstructor bands fragments into rows by their top
// edge and orders each row left to right:
//
//	Milk (y=100,x=10)   $3.99 (y=102,x=300)     Milk    $3.99
//	Eggs (y=200,x=10)   $4.50 (y=198,x=300)  -> Eggs    $4.50
//
// A row is anchored on its first fragment; a fragment joins the row while
// it stays less than the threshold away from that anchor. The anchor never
// moves, so a slow vertical drift is cut into a new row once it reaches the
// threshold even when neighbouring fragments are close to each other.
package layout
